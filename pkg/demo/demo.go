// Package demo provides the built-in dataset served when the feed is
// unreachable and no snapshot has been cached.
package demo

import (
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/borgmon/meetwatch/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type demoFile struct {
	Meetings []demoMeeting `yaml:"meetings"`
}

type demoMeeting struct {
	DayOffset    int    `yaml:"day_offset"`
	Time         string `yaml:"time"`
	Project      string `yaml:"project"`
	Team         string `yaml:"team"`
	Via          string `yaml:"via"`
	Status       string `yaml:"status"`
	TicketURL    string `yaml:"ticket_url"`
	MeetURL      string `yaml:"meet_url"`
	ClientStatus string `yaml:"client_status"`
}

// Meetings returns the demo dataset dated relative to now
func Meetings(now time.Time) []models.Meeting {
	meetings, err := parse(demoYAML, now)
	if err != nil {
		log.Printf("[DEMO] Failed to load demo data: %v", err)
		return []models.Meeting{}
	}
	return meetings
}

func parse(data []byte, now time.Time) ([]models.Meeting, error) {
	var file demoFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse demo data: %w", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	meetings := make([]models.Meeting, 0, len(file.Meetings))

	for i, d := range file.Meetings {
		meetings = append(meetings, models.Meeting{
			ID:           fmt.Sprintf("demo-%d", i+1),
			Date:         today.AddDate(0, 0, d.DayOffset).Format(models.DateLayout),
			Time:         d.Time,
			Project:      d.Project,
			Team:         d.Team,
			Via:          d.Via,
			Status:       d.Status,
			TicketURL:    d.TicketURL,
			MeetURL:      d.MeetURL,
			ClientStatus: d.ClientStatus,
		})
	}

	return meetings, nil
}
