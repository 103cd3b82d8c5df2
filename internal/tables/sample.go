package tables

import (
	"strings"
	"time"

	"tablekit/internal/source/memory"
	"tablekit/internal/table"
)

// SampleUsers returns the demo users seeded by the embedded migrations.
func SampleUsers() []table.Row {
	type u struct {
		name   string
		age    int
		active bool
		joined string
	}
	seed := []u{
		{"Ann Lee", 34, true, "2024-01-05 09:00:00"},
		{"Brian Ortiz", 41, true, "2024-01-12 14:30:00"},
		{"Chen Wei", 29, false, "2024-02-01 08:15:00"},
		{"Dana Scully", 37, true, "2024-02-18 17:45:00"},
		{"Evan Hansen", 22, true, "2024-03-03 11:00:00"},
		{"Fatima Khan", 45, false, "2024-03-21 10:20:00"},
		{"Gus Grant", 52, true, "2024-04-09 16:05:00"},
		{"Hana Tanaka", 31, true, "2024-04-30 13:40:00"},
		{"Ivan Petrov", 27, false, "2024-05-14 07:55:00"},
		{"Julia Romano", 39, true, "2024-06-02 19:10:00"},
		{"Kofi Mensah", 33, true, "2024-06-25 12:00:00"},
		{"Lena Fischer", 48, true, "2024-07-11 15:25:00"},
	}
	rows := make([]table.Row, len(seed))
	for i, s := range seed {
		joined, _ := time.Parse(time.DateTime, s.joined)
		first := strings.ToLower(strings.Fields(s.name)[0])
		rows[i] = table.Row{
			"id":         int64(i + 1),
			"name":       s.name,
			"email":      first + "@example.com",
			"age":        int64(s.age),
			"active":     s.active,
			"created_at": joined,
		}
	}
	return rows
}

// UsersMemory builds the users table over the in-memory sample rows.
func UsersMemory() *table.Definition {
	return Users(memory.New(SampleUsers()))
}

