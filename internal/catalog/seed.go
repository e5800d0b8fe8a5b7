package catalog

import (
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// seedWalkers returns the sample walker data set. Exactly one walker is
// based in Paris; the demo scenarios depend on that count.
func seedWalkers() []models.Walker {
	return []models.Walker{
		{
			ID:           "wlk_amelie",
			Name:         "Amélie Rousseau",
			City:         "Paris",
			Bio:          "Former vet assistant, walks up to three dogs at a time.",
			Rating:       4.9,
			ReviewCount:  127,
			PricePerWalk: decimal.NewFromFloat(18.50),
			Services:     []string{"solo-walk", "group-walk", "puppy-visit"},
			Availability: []string{"morning", "afternoon"},
		},
		{
			ID:           "wlk_jonas",
			Name:         "Jonas Weber",
			City:         "Berlin",
			Bio:          "Marathon runner; best match for high-energy breeds.",
			Rating:       4.7,
			ReviewCount:  89,
			PricePerWalk: decimal.NewFromFloat(15.00),
			Services:     []string{"solo-walk", "jog-walk"},
			Availability: []string{"morning", "evening"},
		},
		{
			ID:           "wlk_sofia",
			Name:         "Sofía Márquez",
			City:         "Madrid",
			Bio:          "Specializes in senior dogs and slow-paced strolls.",
			Rating:       4.8,
			ReviewCount:  64,
			PricePerWalk: decimal.NewFromFloat(14.00),
			Services:     []string{"solo-walk", "senior-care"},
			Availability: []string{"morning", "afternoon", "evening"},
		},
		{
			ID:           "wlk_marco",
			Name:         "Marco Bianchi",
			City:         "Milan",
			Bio:          "Group walks in Parco Sempione every weekday.",
			Rating:       4.5,
			ReviewCount:  42,
			PricePerWalk: decimal.NewFromFloat(12.50),
			Services:     []string{"group-walk"},
			Availability: []string{"afternoon"},
		},
		{
			ID:           "wlk_ines",
			Name:         "Inês Almeida",
			City:         "Lisbon",
			Bio:          "Overnight sitting and weekend hikes along the coast.",
			Rating:       4.6,
			ReviewCount:  58,
			PricePerWalk: decimal.NewFromFloat(13.00),
			Services:     []string{"solo-walk", "overnight", "hike"},
			Availability: []string{"morning", "evening"},
		},
	}
}

func seedServices() []models.WalkService {
	return []models.WalkService{
		{
			ID:          "svc_solo_30",
			Name:        "Solo walk (30 min)",
			Description: "One-on-one neighborhood walk.",
			DurationMin: 30,
			Price:       decimal.NewFromFloat(15.00),
			Category:    "walk",
		},
		{
			ID:          "svc_solo_60",
			Name:        "Solo walk (60 min)",
			Description: "Extended one-on-one walk with play time.",
			DurationMin: 60,
			Price:       decimal.NewFromFloat(25.00),
			Category:    "walk",
		},
		{
			ID:          "svc_group_45",
			Name:        "Group walk (45 min)",
			Description: "Socialized walk, at most four dogs per walker.",
			DurationMin: 45,
			Price:       decimal.NewFromFloat(12.00),
			Category:    "walk",
		},
		{
			ID:          "svc_puppy_20",
			Name:        "Puppy visit (20 min)",
			Description: "Short visit with feeding and basic training.",
			DurationMin: 20,
			Price:       decimal.NewFromFloat(10.00),
			Category:    "visit",
		},
		{
			ID:          "svc_overnight",
			Name:        "Overnight sitting",
			Description: "In-home overnight care, 12 hours.",
			DurationMin: 720,
			Price:       decimal.NewFromFloat(65.00),
			Category:    "sitting",
		},
	}
}

func seedReviews() []models.Review {
	return []models.Review{
		{
			ID:        uuid.MustParse("7d2f1c3a-8b4e-4f6d-9a1b-2c3d4e5f6a7b"),
			WalkerID:  "wlk_amelie",
			Rating:    5,
			Comment:   "Baguette came home happy and tired. Perfect.",
			Author:    "claire_p",
			CreatedAt: time.Date(2024, 11, 3, 14, 12, 0, 0, time.UTC),
		},
		{
			ID:        uuid.MustParse("1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"),
			WalkerID:  "wlk_amelie",
			Rating:    4,
			Comment:   "Reliable and communicative, slightly late once.",
			Author:    "marc_d",
			CreatedAt: time.Date(2024, 12, 18, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:        uuid.MustParse("9f8e7d6c-5b4a-4c3d-8e2f-1a0b9c8d7e6f"),
			WalkerID:  "wlk_jonas",
			Rating:    5,
			Comment:   "Our husky finally gets the exercise she needs.",
			Author:    "annika_s",
			CreatedAt: time.Date(2025, 1, 7, 17, 45, 0, 0, time.UTC),
		},
		{
			ID:        uuid.MustParse("3c4d5e6f-7a8b-4c9d-a0e1-f2a3b4c5d6e7"),
			WalkerID:  "wlk_sofia",
			Rating:    4,
			Comment:   "Very patient with our 14-year-old beagle.",
			Author:    "diego_r",
			CreatedAt: time.Date(2025, 2, 21, 11, 5, 0, 0, time.UTC),
		},
	}
}
