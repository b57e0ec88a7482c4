// Package randomgen creates random but plausible contact data for tests and the simulator.
package randomgen

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

var firstNames = []string{
	"Anna", "Ben", "Clara", "David", "Emma", "Felix", "Greta", "Hans", "Ida", "Jonas", "Karla",
	"Lukas", "Mia", "Noah", "Olga", "Paul", "Rosa", "Stefan", "Tina", "Uwe",
}

var lastNames = []string{
	"Becker", "Fischer", "Hoffmann", "Klein", "Koch", "Meyer", "Müller", "Richter", "Schmidt",
	"Schneider", "Schulz", "Wagner", "Weber", "Wolf",
}

var colors = []string{"blue", "green", "red", "yellow", "purple", "orange"}

var places = []string{"school", "work", "a conference", "the gym", "a wedding", "the neighborhood"}

var tags = []string{"family", "friends", "work", "book club", "neighbors"}

// Generator draws values from its own source so that runs can be repeated with a fixed seed.
type Generator struct {
	rnd *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *Generator) pick(values []string) string {
	return values[g.rnd.Intn(len(values))]
}

func (g *Generator) FirstName() string {
	return g.pick(firstNames)
}

func (g *Generator) LastName() string {
	return g.pick(lastNames)
}

func (g *Generator) Tag() string {
	return g.pick(tags)
}

// Date returns a date between the given years in the YYYY-MM-DD layout.
func (g *Generator) Date(fromYear, toYear int) string {
	start := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(time.Date(toYear, time.December, 31, 0, 0, 0, 0, time.UTC).Sub(start).Hours() / 24)
	return start.AddDate(0, 0, g.rnd.Intn(days+1)).Format("2006-01-02")
}

// Contact returns a contact document with a name and, at random, some of the optional values.
func (g *Generator) Contact() api.Contact {
	first, last := g.FirstName(), g.LastName()
	contact := api.Contact{FirstName: &first, LastName: &last}
	if g.rnd.Intn(2) == 0 {
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), g.rnd.Intn(100))
		contact.Email = &email
	}
	if g.rnd.Intn(2) == 0 {
		birthday := g.Date(1950, 2005)
		contact.Birthday = &birthday
	}
	if g.rnd.Intn(3) == 0 {
		howMet, color := g.pick(places), g.pick(colors)
		contact.HowMet = &howMet
		contact.FavoriteColor = &color
	}
	return contact
}

// Note returns a short note text.
func (g *Generator) Note() string {
	return fmt.Sprintf("Talked about %s", g.pick([]string{"holidays", "the kids", "work", "books", "football"}))
}

// Intn returns a number in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}

func (g *Generator) Phone() api.Phone {
	return api.Phone{
		Number: fmt.Sprintf("555-%04d", g.rnd.Intn(10000)),
		Type:   g.pick([]string{"mobile", "home", "work"}),
	}
}

// Reminder returns a reminder within a year after from.
func (g *Generator) Reminder(from time.Time) api.Reminder {
	return api.Reminder{
		Message: fmt.Sprintf("Ask about %s", g.pick([]string{"the new job", "the trip", "the garden", "the move"})),
		Date:    from.AddDate(0, 0, 1+g.rnd.Intn(365)).Format("2006-01-02"),
	}
}

func (g *Generator) Occasion() api.Occasion {
	return api.Occasion{
		Name: g.pick([]string{"Anniversary", "Work Anniversary", "Graduation"}),
		Date: g.Date(2015, 2025),
	}
}

// Gift returns a gift without occasion.
func (g *Generator) Gift() api.Gift {
	return api.Gift{
		Description: g.pick([]string{"A book", "Flowers", "A scarf", "Concert tickets", "A nice gift"}),
		Direction:   g.pick([]string{"given", "received"}),
		Date:        g.Date(2020, 2025),
	}
}
