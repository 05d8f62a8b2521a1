package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL         string        // Base URL of the service
	Meets           int           // Number of meets to generate
	Teams           int           // Teams per meet
	AthletesPerTeam int           // Swimmers per team; one diver is added
	Workers         int           // Number of concurrent submitters
	Timeout         time.Duration // HTTP request timeout
	Seed            uint64        // Generator seed; equal seeds give equal meets
	Settle          time.Duration // Pause between submitting and reading
}

// Stats holds run statistics.
type Stats struct {
	MeetsGenerated   int
	MeetsSubmitted   int
	MeetsAccepted    int
	MeetsDuplicate   int
	MeetsFailed      int
	ResultsRead      int
	ResultsVerified  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	VerificationErrs []string
}

// Default run values.
const (
	DefaultMeets           = 10
	DefaultTeams           = 4
	DefaultAthletesPerTeam = 8
	DefaultWorkers         = 4
	DefaultTimeout         = 10 * time.Second
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.Meets <= 0 {
		out.Meets = DefaultMeets
	}
	if out.Teams <= 0 {
		out.Teams = DefaultTeams
	}
	if out.AthletesPerTeam < 4 {
		out.AthletesPerTeam = DefaultAthletesPerTeam
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}
