package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/AlekSi/pointer"

	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
)

var (
	days       = flag.Int("days", 14, "Number of days of departures to generate")
	seed       = flag.Int64("seed", 0, "Random seed (0 = current time)")
	dryRun     = flag.Bool("dry-run", false, "Show what would be generated without making changes")
	grantAdmin = flag.String("grant-admin", "", "Auth user id to grant the admin role")
	adminName  = flag.String("admin-name", "Administrator", "Profile name for -grant-admin")
)

type routeSeed struct {
	Origin      string
	Destination string
	DistanceKm  int
	Duration    time.Duration
	Fare        float64
}

var routeSeeds = []routeSeed{
	{"Lagos", "Abuja", 760, 10 * time.Hour, 25000},
	{"Lagos", "Ibadan", 130, 2 * time.Hour, 6000},
	{"Abuja", "Kaduna", 190, 3 * time.Hour, 8000},
	{"Enugu", "Port Harcourt", 220, 4 * time.Hour, 9500},
	{"Ibadan", "Ilorin", 160, 3 * time.Hour, 7000},
}

var busSeeds = []models.Bus{
	{PlateNumber: "LAG-101-BL", Model: "Toyota Hiace", Capacity: 14},
	{PlateNumber: "ABJ-202-BL", Model: "Marcopolo Paradiso", Capacity: 48},
	{PlateNumber: "ENU-303-BL", Model: "Yutong ZK6122", Capacity: 53},
}

var promoSeeds = []models.PromoCode{
	{Code: "WELCOME10", DiscountType: models.DiscountTypePercentage, DiscountValue: 10, MaxDiscount: pointer.ToFloat64(5000), IsActive: true},
	{Code: "FLAT2000", DiscountType: models.DiscountTypeFixed, DiscountValue: 2000, MinAmount: 10000, UsageLimit: pointer.ToInt(100), IsActive: true},
}

// departure describes one generated schedule row.
type departure struct {
	Route int
	Bus   int
	Times []time.Time
}

// buildPlan spreads departures for each route over the given days. Each
// route gets one to three departures a day between 06:00 and 20:00.
func buildPlan(start time.Time, days int, rng *rand.Rand) []departure {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	plan := make([]departure, 0, len(routeSeeds))
	for i := range routeSeeds {
		d := departure{Route: i, Bus: i % len(busSeeds)}
		for n := 0; n < days; n++ {
			perDay := 1 + rng.Intn(3)
			for k := 0; k < perDay; k++ {
				hour := 6 + rng.Intn(15)
				d.Times = append(d.Times, day.AddDate(0, 0, n).Add(time.Duration(hour)*time.Hour))
			}
		}
		plan = append(plan, d)
	}
	return plan
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Get().Info("Starting trip generator...", "days", *days, "dry_run", *dryRun)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	plan := buildPlan(time.Now().UTC(), *days, rand.New(rand.NewSource(*seed)))

	if *dryRun {
		for _, d := range plan {
			r := routeSeeds[d.Route]
			logger.Get().Info("Would generate schedules",
				"route", r.Origin+" - "+r.Destination,
				"bus", busSeeds[d.Bus].PlateNumber,
				"departures", len(d.Times))
		}
		return
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	repos := repository.NewRepositories(db)
	if err := generate(ctx, repos, plan); err != nil {
		logger.Fatal("Failed to generate trips", "error", err)
	}

	if *grantAdmin != "" {
		if err := repos.Profiles.Upsert(ctx, &models.Profile{ID: *grantAdmin, FullName: *adminName}); err != nil {
			logger.Fatal("Failed to upsert admin profile", "error", err)
		}
		if err := repos.Roles.Grant(ctx, *grantAdmin, "admin", 100); err != nil {
			logger.Fatal("Failed to grant admin role", "error", err)
		}
		logger.Get().Info("Granted admin role", "user_id", *grantAdmin)
	}

	logger.Get().Info("Trip generation completed successfully!")
}

func generate(ctx context.Context, repos *repository.Repositories, plan []departure) error {
	buses := make([]models.Bus, len(busSeeds))
	for i, b := range busSeeds {
		bus := b
		if err := repos.Trips.CreateBus(ctx, &bus); err != nil {
			return fmt.Errorf("failed to create bus %s: %w", b.PlateNumber, err)
		}
		buses[i] = bus
	}

	for _, d := range plan {
		r := routeSeeds[d.Route]
		route := &models.Route{
			Origin:      r.Origin,
			Destination: r.Destination,
			DistanceKm:  pointer.ToInt(r.DistanceKm),
			DurationMin: pointer.ToInt(int(r.Duration.Minutes())),
		}
		if err := repos.Trips.CreateRoute(ctx, route); err != nil {
			return fmt.Errorf("failed to create route %s - %s: %w", r.Origin, r.Destination, err)
		}

		if err := repos.Trips.CreateSchedules(ctx, route.ID, buses[d.Bus], d.Times, r.Duration, r.Fare); err != nil {
			return fmt.Errorf("failed to create schedules for %s - %s: %w", r.Origin, r.Destination, err)
		}
		logger.Get().Info("Generated schedules", "route", r.Origin+" - "+r.Destination, "count", len(d.Times))
	}

	for _, p := range promoSeeds {
		promo := p
		existing, err := repos.Promos.GetByCode(ctx, promo.Code)
		if err != nil {
			return fmt.Errorf("failed to look up promo %s: %w", promo.Code, err)
		}
		if existing != nil {
			continue
		}
		if err := repos.Promos.Create(ctx, &promo); err != nil {
			return fmt.Errorf("failed to create promo %s: %w", promo.Code, err)
		}
		logger.Get().Info("Generated promo code", "code", promo.Code)
	}

	return nil
}
