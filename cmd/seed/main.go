package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelfolio/internal/config"
	"hotelfolio/internal/database"
	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/license"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
	jwtsvc "hotelfolio/internal/pkg/jwt"
)

const demoHotelID int64 = 1

var demoTables = []string{"stays", "pos_orders", "scheduled_services"}

// cleanDemoData removes the hotel's rows so the seed can be rerun.
func cleanDemoData(db *gorm.DB, hotelID int64) error {
	for _, table := range demoTables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE hotel_id = ?", table), hotelID).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old demo data...")
	if err := cleanDemoData(db, demoHotelID); err != nil {
		log.Fatal("Cleanup failed:", err)
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	today := time.Now().Truncate(24 * time.Hour)

	// ================== STAYS ==================
	log.Println("Creating stays...")
	stays := stay.NewRepository(db)
	guests := []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Katherine Johnson", "Edsger Dijkstra", "Barbara Liskov"}
	for i, guest := range guests {
		in := today.AddDate(0, 0, rng.Intn(10)-6)
		out := in.AddDate(0, 0, 1+rng.Intn(4))
		total := decimal.NewFromInt(int64(120 * (1 + rng.Intn(4))))
		paid := total
		status := stay.StatusCheckedIn
		payment := stay.PaymentPaid
		switch i % 3 {
		case 1:
			paid = total.Div(decimal.NewFromInt(2)).Round(2)
			payment = stay.PaymentPending
		case 2:
			status = stay.StatusCheckedOut
		}
		if err := stays.Create(ctx, &stay.Stay{
			HotelID:       demoHotelID,
			GuestName:     guest,
			RoomNumber:    fmt.Sprintf("%d%02d", 1+i/3, 1+i),
			CheckInDate:   &in,
			CheckOutDate:  &out,
			TotalAmount:   total,
			PaidAmount:    paid,
			Status:        status,
			PaymentStatus: payment,
			Adults:        1 + rng.Intn(2),
			Children:      rng.Intn(2),
		}); err != nil {
			log.Fatal("create stay:", err)
		}
	}

	// ================== ORDERS ==================
	log.Println("Creating POS orders...")
	orders := pos.NewRepository(db)
	menu := []pos.OrderItem{
		{Name: "Club sandwich", Price: decimal.RequireFromString("14.50")},
		{Name: "Caesar salad", Price: decimal.RequireFromString("11.00")},
		{Name: "Espresso", Price: decimal.RequireFromString("3.20")},
		{Name: "House wine", Price: decimal.RequireFromString("9.00")},
	}
	for i := 0; i < 8; i++ {
		n := 1 + rng.Intn(3)
		items := make([]pos.OrderItem, 0, n)
		for j := 0; j < n; j++ {
			item := menu[rng.Intn(len(menu))]
			item.Quantity = int64(1 + rng.Intn(3))
			items = append(items, item)
		}
		o := &pos.Order{
			HotelID:   demoHotelID,
			Items:     items,
			Status:    []pos.Status{pos.StatusPending, pos.StatusPaid, pos.StatusPaid, pos.StatusCancelled}[rng.Intn(4)],
			OrderType: pos.OrderDineIn,
		}
		if i%2 == 0 {
			o.TableNumber = fmt.Sprintf("T%d", 1+rng.Intn(12))
		} else {
			o.OrderType = pos.OrderRoomService
			o.RoomID = fmt.Sprintf("room-%d", 101+rng.Intn(6))
		}
		if err := orders.Create(ctx, o); err != nil {
			log.Fatal("create order:", err)
		}
	}

	// ================== SCHEDULED SERVICES ==================
	log.Println("Creating scheduled services...")
	services := amenity.NewRepository(db)
	catalog := []amenity.ServiceRef{
		{Name: "Hot stone massage", Category: "spa", Location: "Spa level 2"},
		{Name: "City walking tour", Category: "tour", Location: "Lobby"},
		{Name: "Private dinner", Category: "dining", Location: "Rooftop"},
	}
	for i := 0; i < 5; i++ {
		at := today.Add(time.Duration(9+rng.Intn(10)) * time.Hour).AddDate(0, 0, rng.Intn(3)-1)
		if err := services.Create(ctx, &amenity.ScheduledService{
			HotelID:       demoHotelID,
			Service:       catalog[i%len(catalog)],
			ScheduledAt:   &at,
			TotalAmount:   decimal.NewFromInt(int64(40 + 20*rng.Intn(5))),
			PaymentStatus: []amenity.PaymentStatus{amenity.PaymentPaid, amenity.PaymentPending}[rng.Intn(2)],
			Status:        amenity.StatusScheduled,
		}); err != nil {
			log.Fatal("create scheduled service:", err)
		}
	}

	// ================== LICENCE ==================
	log.Println("Creating pending licence...")
	lic := license.License{
		ID:            "demo-license",
		HotelID:       demoHotelID,
		PlanID:        "pro",
		Email:         "owner@demo-hotel.test",
		PaymentStatus: license.StatusPending,
		BillingPeriod: license.BillingYearly,
	}
	// Upsert by primary key so re-seeding resets the licence to pending.
	db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"payment_status": license.StatusPending,
			"transaction_id": "",
			"licence_key":    "",
			"activated_at":   nil,
			"expires_at":     nil,
		}),
	}).Create(&lic)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	token, err := j.GenerateToken(1, "front_desk", demoHotelID)
	if err != nil {
		log.Fatal("sign token:", err)
	}

	log.Println("Seed completed")
	log.Printf("Front desk token for hotel %d: %s", demoHotelID, token)
	log.Printf("Activate the licence with tx_ref=license_%s_yearly", lic.ID)
}
