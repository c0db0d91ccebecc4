package main

import (
	"fmt"
	"log"
	"time"

	"eventhive/internal/auth"
	"eventhive/internal/events"
	"eventhive/internal/shared/config"
	"eventhive/internal/shared/database"
	"eventhive/internal/users"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type Seeder struct {
	db       *gorm.DB
	verifier *auth.JWTVerifier
	tokenTTL time.Duration
}

func main() {
	fmt.Println("🌱 Starting EventHive Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	if err := database.MigrateConstraints(db); err != nil {
		log.Fatalf("Failed to apply constraints: %v", err)
	}

	seeder := &Seeder{
		db:       db,
		verifier: auth.NewJWTVerifier(cfg.Auth),
		tokenTTL: cfg.Auth.DevTokenTTL,
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\n🌱 Seeding database...")
	accounts, err := seeder.SeedUsers()
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	if err := seeder.SeedEvents(accounts["manager"]); err != nil {
		log.Fatalf("Failed to seed events: %v", err)
	}

	fmt.Println("\n🔑 Development tokens (valid for " + seeder.tokenTTL.String() + "):")
	if err := seeder.PrintTokens(accounts); err != nil {
		log.Fatalf("Failed to issue tokens: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"bookings", "events", "users"} {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedUsers creates one account per role plus a second regular user.
func (s *Seeder) SeedUsers() (map[string]users.User, error) {
	fmt.Println("  👤 Seeding users...")

	usersData := []struct {
		key   string
		name  string
		email string
		role  users.Role
	}{
		{"admin", "Admin User", "admin@eventhive.app", users.RoleAdmin},
		{"manager", "Maya Organizer", "manager@eventhive.app", users.RoleManager},
		{"user1", "Riley Attendee", "riley@example.com", users.RoleUser},
		{"user2", "Sam Attendee", "sam@example.com", users.RoleUser},
	}

	out := make(map[string]users.User, len(usersData))
	for _, data := range usersData {
		user := users.User{
			Name:   data.name,
			Email:  data.email,
			Role:   data.role,
			Status: users.StatusVerified,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", data.email, err)
		}
		out[data.key] = user
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}
	return out, nil
}

// SeedEvents covers the interesting seat and refund cases: a roomy paid
// event, a single-seat event for waitlist testing, a free event and one
// inside the full-refund window.
func (s *Seeder) SeedEvents(organizer users.User) error {
	fmt.Println("  🎫 Seeding events...")

	now := time.Now().UTC().Truncate(time.Hour)
	eventsData := []events.Event{
		{
			Title:       "Go Systems Conference",
			Category:    "Technology",
			Description: "Two days of talks on distributed systems and Go in production.",
			Location:    "Berlin",
			Date:        now.AddDate(0, 1, 0),
			Price:       149.00,
			TotalSeats:  200,
			Image:       "https://images.eventhive.app/go-conf.jpg",
		},
		{
			Title:       "Intimate Piano Recital",
			Category:    "Music",
			Description: "A single front-row seat. Everyone else joins the waitlist.",
			Location:    "Vienna",
			Date:        now.AddDate(0, 0, 14),
			Price:       80.00,
			TotalSeats:  1,
		},
		{
			Title:       "Community Meetup",
			Category:    "Community",
			Description: "Free entry, pizza included.",
			Location:    "Lisbon",
			Date:        now.AddDate(0, 0, 7),
			Price:       0,
			TotalSeats:  50,
		},
		{
			Title:       "Late Night Comedy",
			Category:    "Comedy",
			Description: "Starts within a day, so cancellations only refund partially.",
			Location:    "London",
			Date:        now.Add(20 * time.Hour),
			Price:       35.50,
			TotalSeats:  30,
		},
	}

	for i := range eventsData {
		event := &eventsData[i]
		event.OrganizerName = organizer.Name
		event.OrganizerEmail = organizer.Email
		event.AvailableSeats = event.TotalSeats

		if err := s.db.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Title, err)
		}
		fmt.Printf("    ✅ Created event: %s (%d seats, %.2f)\n", event.Title, event.TotalSeats, event.Price)
	}
	return nil
}

// PrintTokens mints bearer tokens so the API can be exercised without an
// identity provider.
func (s *Seeder) PrintTokens(accounts map[string]users.User) error {
	for _, key := range []string{"admin", "manager", "user1", "user2"} {
		user := accounts[key]
		token, err := s.verifier.Issue(user.Email, user.Name, s.tokenTTL)
		if err != nil {
			return err
		}
		fmt.Printf("  %-8s %s\n           Bearer %s\n", key, user.Email, token)
	}
	return nil
}
