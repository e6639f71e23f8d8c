package services

import (
	"fmt"
	"strings"

	"juaconnect-server/models"
)

type message struct {
	Title   string
	Message string
}

// templateSet renders the text of lifecycle notifications.
type templateSet struct {
	accepted   func(r models.ServiceRequest) message
	rejected   func(r models.ServiceRequest) message
	started    func(r models.ServiceRequest) message
	completed  func(r models.ServiceRequest) message
	newBooking func(r models.ServiceRequest) message
}

var english = templateSet{
	accepted: func(r models.ServiceRequest) message {
		return message{
			Title:   "Request Accepted",
			Message: fmt.Sprintf("Your %s request has been accepted by %s.", r.ServiceCategory, artisanName(r)),
		}
	},
	rejected: func(r models.ServiceRequest) message {
		return message{
			Title:   "Request Rejected",
			Message: fmt.Sprintf("Your %s request was declined.", r.ServiceCategory),
		}
	},
	started: func(r models.ServiceRequest) message {
		return message{
			Title:   "Work Started",
			Message: fmt.Sprintf("%s has started work on your %s request.", artisanName(r), r.ServiceCategory),
		}
	},
	completed: func(r models.ServiceRequest) message {
		return message{
			Title:   "Job Completed",
			Message: fmt.Sprintf("Your %s job is complete. Payment of %s is now due.", r.ServiceCategory, amount(r.Budget)),
		}
	},
	newBooking: func(r models.ServiceRequest) message {
		return message{
			Title:   "New Booking Request",
			Message: fmt.Sprintf("%s would like to book you for %s.", r.Client.Name, r.ServiceCategory),
		}
	},
}

var swahili = templateSet{
	accepted: func(r models.ServiceRequest) message {
		return message{
			Title:   "Ombi Limekubaliwa",
			Message: fmt.Sprintf("Ombi lako la %s limekubaliwa na %s.", r.ServiceCategory, artisanName(r)),
		}
	},
	rejected: func(r models.ServiceRequest) message {
		return message{
			Title:   "Ombi Limekataliwa",
			Message: fmt.Sprintf("Ombi lako la %s limekataliwa.", r.ServiceCategory),
		}
	},
	started: func(r models.ServiceRequest) message {
		return message{
			Title:   "Kazi Imeanza",
			Message: fmt.Sprintf("%s ameanza kazi ya ombi lako la %s.", artisanName(r), r.ServiceCategory),
		}
	},
	completed: func(r models.ServiceRequest) message {
		return message{
			Title:   "Kazi Imekamilika",
			Message: fmt.Sprintf("Kazi yako ya %s imekamilika. Malipo ya %s yanadaiwa sasa.", r.ServiceCategory, amount(r.Budget)),
		}
	},
	newBooking: func(r models.ServiceRequest) message {
		return message{
			Title:   "Ombi Jipya la Huduma",
			Message: fmt.Sprintf("%s angependa kukuajiri kwa %s.", r.Client.Name, r.ServiceCategory),
		}
	},
}

func templatesFor(lang string) templateSet {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "sw", "swahili":
		return swahili
	default:
		return english
	}
}

func artisanName(r models.ServiceRequest) string {
	if r.Artisan == nil || r.Artisan.Name == "" {
		return "an artisan"
	}
	return r.Artisan.Name
}

func amount(budget *float64) string {
	if budget == nil {
		return "the agreed amount"
	}
	return fmt.Sprintf("KES %.2f", *budget)
}
