package main

import "juaconnect-server/models"

// sampleArtisans is the development directory loaded when SEED_DIRECTORY is set
func sampleArtisans() []models.ArtisanProfile {
	rate := func(v float64) *float64 { return &v }

	return []models.ArtisanProfile{
		{
			ID:              101,
			Username:        "John Carpenter",
			Email:           "john@juaconnect.com",
			Phone:           "0712345678",
			Location:        "Nairobi",
			ServiceCategory: string(models.CategoryCarpentry),
			ExperienceYears: 8,
			Bio:             "Expert carpenter with over 8 years of experience in furniture making and repairs.",
			Rating:          4.8,
			IsVerified:      true,
			Skills:          "Furniture,Doors,Windows,Cabinets",
			HourlyRate:      rate(1500),
			Languages:       "English,Swahili",
			ServiceArea:     "Nairobi,Kasarani,Westlands",
		},
		{
			ID:              102,
			Username:        "Mary Plumber",
			Email:           "mary@juaconnect.com",
			Phone:           "0723456789",
			Location:        "Nairobi",
			ServiceCategory: string(models.CategoryPlumbing),
			ExperienceYears: 5,
			Bio:             "Licensed plumber specializing in residential and commercial plumbing services.",
			Rating:          4.6,
			IsVerified:      true,
			Skills:          "Pipes,Leak Repair,Installation",
			HourlyRate:      rate(1200),
			Languages:       "English,Swahili",
			ServiceArea:     "Nairobi,Kilimani,Parklands",
		},
		{
			ID:              103,
			Username:        "Ahmed Electric",
			Email:           "ahmed@juaconnect.com",
			Phone:           "0734567890",
			Location:        "Mombasa",
			ServiceCategory: string(models.CategoryElectrical),
			ExperienceYears: 10,
			Bio:             "Certified electrician with a decade of experience in all electrical works.",
			Rating:          4.9,
			IsVerified:      true,
			Skills:          "Wiring,Lighting,Panel Installation",
			HourlyRate:      rate(1800),
			Languages:       "English,Swahili,Arabic",
			ServiceArea:     "Mombasa,Nairobi",
		},
		{
			ID:              104,
			Username:        "Peter Mason",
			Email:           "peter@juaconnect.com",
			Phone:           "0745678901",
			Location:        "Kisumu",
			ServiceCategory: string(models.CategoryMasonry),
			ExperienceYears: 6,
			Bio:             "Skilled mason specializing in brickwork, tiling, and concrete works.",
			Rating:          4.5,
			IsVerified:      true,
			Skills:          "Brickwork,Tiling,Concrete",
			HourlyRate:      rate(1300),
			Languages:       "English,Swahili",
			ServiceArea:     "Kisumu,Nairobi",
		},
		{
			ID:              105,
			Username:        "Sarah Welder",
			Email:           "sarah@juaconnect.com",
			Phone:           "0756789012",
			Location:        "Nairobi",
			ServiceCategory: string(models.CategoryWelding),
			ExperienceYears: 7,
			Bio:             "Professional welder experienced in structural and decorative metalwork.",
			Rating:          4.7,
			IsVerified:      true,
			Skills:          "Gates,Grills,Metal Frames",
			HourlyRate:      rate(1400),
			Languages:       "English,Swahili",
			ServiceArea:     "Nairobi,Ruiru,Thika",
		},
	}
}
