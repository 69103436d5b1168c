// Package testutil opens isolated in-memory databases and seeds the marketplace
// tables that the notification subsystem reads but does not own.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"petmemorial/internal/database"
)

var dbSeq atomic.Int64

// OpenDB opens a fresh shared-cache in-memory SQLite database through database.Connect.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type SchemaOption func(*schemaOptions)

type schemaOptions struct {
	withoutPreferences bool
}

// WithoutPreferenceColumns creates the users table as older deployments had it,
// without email_notifications and sms_notifications.
func WithoutPreferenceColumns() SchemaOption {
	return func(o *schemaOptions) { o.withoutPreferences = true }
}

// CreateMarketplaceTables creates users, business profiles, providers, packages and bookings.
func CreateMarketplaceTables(t *testing.T, db *gorm.DB, opts ...SchemaOption) {
	t.Helper()

	o := &schemaOptions{}
	for _, opt := range opts {
		opt(o)
	}

	users := `CREATE TABLE users (
		user_id INTEGER PRIMARY KEY,
		email TEXT,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'fur_parent',
		status TEXT NOT NULL DEFAULT 'active',
		email_notifications BOOLEAN DEFAULT 1,
		sms_notifications BOOLEAN DEFAULT 0
	)`
	if o.withoutPreferences {
		users = `CREATE TABLE users (
			user_id INTEGER PRIMARY KEY,
			email TEXT,
			first_name TEXT,
			last_name TEXT,
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'fur_parent',
			status TEXT NOT NULL DEFAULT 'active'
		)`
	}

	stmts := []string{
		users,
		`CREATE TABLE business_profiles (id INTEGER PRIMARY KEY, user_id INTEGER, business_name TEXT)`,
		`CREATE TABLE service_providers (provider_id INTEGER PRIMARY KEY, name TEXT, user_id INTEGER)`,
		`CREATE TABLE service_packages (package_id INTEGER PRIMARY KEY, provider_id INTEGER, name TEXT, price REAL)`,
		`CREATE TABLE service_bookings (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			provider_id INTEGER,
			package_id INTEGER,
			pet_name TEXT,
			booking_date TEXT,
			booking_time TEXT,
			total_amount REAL,
			status TEXT DEFAULT 'pending'
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create marketplace table: %v", err)
		}
	}
}

type User struct {
	ID                 int64
	Email              string
	FirstName          string
	Phone              string
	Role               string
	Status             string
	EmailNotifications bool
	SMSNotifications   bool
}

// InsertUser seeds a user. Preference columns are written only when the table has them.
func InsertUser(t *testing.T, db *gorm.DB, u User) {
	t.Helper()
	if u.Role == "" {
		u.Role = "fur_parent"
	}
	if u.Status == "" {
		u.Status = "active"
	}

	var err error
	if db.Migrator().HasColumn("users", "email_notifications") {
		err = db.Exec(
			`INSERT INTO users (user_id, email, first_name, phone, role, status, email_notifications, sms_notifications) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.FirstName, u.Phone, u.Role, u.Status, u.EmailNotifications, u.SMSNotifications,
		).Error
	} else {
		err = db.Exec(
			`INSERT INTO users (user_id, email, first_name, phone, role, status) VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.FirstName, u.Phone, u.Role, u.Status,
		).Error
	}
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
}

func InsertBusinessProfile(t *testing.T, db *gorm.DB, id, userID int64, name string) {
	t.Helper()
	if err := db.Exec(`INSERT INTO business_profiles (id, user_id, business_name) VALUES (?, ?, ?)`, id, userID, name).Error; err != nil {
		t.Fatalf("failed to insert business profile: %v", err)
	}
}

func InsertProvider(t *testing.T, db *gorm.DB, providerID int64, name string, userID int64) {
	t.Helper()
	if err := db.Exec(`INSERT INTO service_providers (provider_id, name, user_id) VALUES (?, ?, ?)`, providerID, name, userID).Error; err != nil {
		t.Fatalf("failed to insert provider: %v", err)
	}
}

func InsertPackage(t *testing.T, db *gorm.DB, packageID, providerID int64, name string, price float64) {
	t.Helper()
	if err := db.Exec(`INSERT INTO service_packages (package_id, provider_id, name, price) VALUES (?, ?, ?, ?)`, packageID, providerID, name, price).Error; err != nil {
		t.Fatalf("failed to insert package: %v", err)
	}
}

type Booking struct {
	ID          int64
	UserID      int64
	ProviderID  int64
	PackageID   int64
	PetName     string
	Date        string
	Time        string
	TotalAmount float64
}

func InsertBooking(t *testing.T, db *gorm.DB, b Booking) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO service_bookings (id, user_id, provider_id, package_id, pet_name, booking_date, booking_time, total_amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.ProviderID, b.PackageID, b.PetName, b.Date, b.Time, b.TotalAmount,
	).Error
	if err != nil {
		t.Fatalf("failed to insert booking: %v", err)
	}
}

// SeedStandardBooking seeds the fixture most tests share: fur parent 7 (Ana),
// provider 3 "Peaceful Paws" owned by business user 9, and booking 42 for Bella.
func SeedStandardBooking(t *testing.T, db *gorm.DB, date, clock string) {
	t.Helper()
	InsertUser(t, db, User{ID: 7, Email: "ana@example.com", FirstName: "Ana", Phone: "09171234567", EmailNotifications: true, SMSNotifications: true})
	InsertUser(t, db, User{ID: 9, Email: "owner@peacefulpaws.example.com", FirstName: "Jun", Role: "business", EmailNotifications: true})
	InsertBusinessProfile(t, db, 30, 9, "Peaceful Paws Crematory")
	InsertProvider(t, db, 3, "Peaceful Paws", 9)
	InsertPackage(t, db, 11, 3, "Standard Cremation", 1500)
	InsertBooking(t, db, Booking{
		ID: 42, UserID: 7, ProviderID: 3, PackageID: 11,
		PetName: "Bella", Date: date, Time: clock, TotalAmount: 1500,
	})
}
