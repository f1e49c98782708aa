package crm

// Seed data shown on first run, before anything has been saved.

func seedClients() []Client {
	return []Client{
		{ID: "1", Name: "Client A", Email: "a@email.com", Phone: "1234567890", Status: ClientActive, Value: NewAmount(5000)},
		{ID: "2", Name: "Client B", Email: "b@email.com", Phone: "9876543210", Status: ClientLost, Value: NewAmount(3000)},
		{ID: "3", Name: "Client C", Email: "c@email.com", Phone: "5556667777", Status: ClientHighValue, Value: NewAmount(12000)},
	}
}

func seedDeals() []Deal {
	return []Deal{
		{ID: "1", Name: "Website Redesign", Client: "Client A", ClientID: "1", Stage: StageLeads, Value: NewAmount(5000)},
		{ID: "2", Name: "Mobile App", Client: "Client B", ClientID: "2", Stage: StageNegotiation, Value: NewAmount(12000)},
		{ID: "3", Name: "SEO Project", Client: "Client C", ClientID: "3", Stage: StageWon, Value: NewAmount(8000)},
		{ID: "4", Name: "CRM Setup", Client: "Client D", ClientID: "4", Stage: StageLost, Value: NewAmount(3000)},
	}
}

func seedTasks() []Task {
	return []Task{
		{ID: "t1", Title: "Follow up call", ClientID: "1", DueDate: mustDate("2025-09-10"), Status: TaskPending},
		{ID: "t2", Title: "Send proposal", ClientID: "2", DueDate: mustDate("2025-09-12"), Status: TaskCompleted},
	}
}

func seedNotes() map[string][]Note {
	return map[string][]Note{}
}

func mustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
