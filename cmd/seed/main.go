package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type seedService struct {
	Category   string
	Name       string
	Price      float64
	Difficulty int
	TimeHrs    float64
}

var seedServices = []seedService{
	{"Engine", "Engine oil change", 1200, 2, 1},
	{"Engine", "Engine tune-up", 3500, 4, 3},
	{"Brakes", "Brake pad replacement", 1800, 3, 1.5},
	{"Brakes", "Brake fluid flush", 900, 2, 1},
	{"Electrical", "Battery replacement", 800, 1, 0.5},
	{"Electrical", "Alternator repair", 2600, 4, 2.5},
	{"Suspension", "Shock absorber replacement", 3200, 4, 2},
	{"General", "Full car wash and detailing", 600, 1, 1},
	{"General", "Wheel alignment", 1100, 2, 1},
	{"AC", "AC gas refill", 1500, 2, 1},
	{"AC", "AC compressor repair", 4200, 5, 3},
}

var seedTimeSlots = [][2]string{
	{"09:00", "11:00"},
	{"11:00", "13:00"},
	{"14:00", "16:00"},
	{"16:00", "18:00"},
}

// Seeds the service catalog, categories and pickup/drop time slots.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	connStr := os.Getenv("DB_URL")
	if connStr == "" {
		log.Fatal("DB_URL is required")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("✅ Successfully connected to database")

	categoryIDs := make(map[string]int64)
	for _, svc := range seedServices {
		if _, ok := categoryIDs[svc.Category]; ok {
			continue
		}
		var id int64
		err := db.QueryRow(`
			INSERT INTO service_categories (name, is_active, created_at, updated_at)
			VALUES ($1, true, NOW(), NOW())
			ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
			RETURNING id`, svc.Category).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed category %s: %v", svc.Category, err)
		}
		categoryIDs[svc.Category] = id
	}
	log.Printf("✅ Seeded %d categories", len(categoryIDs))

	seeded := 0
	for _, svc := range seedServices {
		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM services WHERE name = $1)`, svc.Name).Scan(&exists); err != nil {
			log.Fatalf("Failed to check service %s: %v", svc.Name, err)
		}
		if exists {
			continue
		}
		_, err := db.Exec(`
			INSERT INTO services (category_id, name, price, difficulty, time_hrs, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, NOW(), NOW())`,
			categoryIDs[svc.Category], svc.Name, svc.Price, svc.Difficulty, svc.TimeHrs)
		if err != nil {
			log.Fatalf("Failed to seed service %s: %v", svc.Name, err)
		}
		seeded++
	}
	log.Printf("✅ Seeded %d services", seeded)

	for _, slot := range seedTimeSlots {
		_, err := db.Exec(`
			INSERT INTO time_slots (start_time, end_time, is_active, created_at, updated_at)
			SELECT $1, $2, true, NOW(), NOW()
			WHERE NOT EXISTS (SELECT 1 FROM time_slots WHERE start_time = $1 AND end_time = $2)`,
			slot[0], slot[1])
		if err != nil {
			log.Fatalf("Failed to seed time slot %s-%s: %v", slot[0], slot[1], err)
		}
	}
	log.Printf("✅ Seeded time slots")
}
