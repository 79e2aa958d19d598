package feecal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"feetrack/internal/core"
)

type scheduleFile struct {
	Schools []scheduleYAML `yaml:"schools"`
}

type scheduleYAML struct {
	School  string       `yaml:"school"`
	Code    string       `yaml:"code"`
	Mode    string       `yaml:"mode"`
	Periods []periodYAML `yaml:"periods"`
}

type periodYAML struct {
	Key   string   `yaml:"key"`
	Start string   `yaml:"start"`
	Match []string `yaml:"match"`
}

// Load reads a calendar override file. The file replaces the built-in
// calendar wholesale; there is no per-field merging with Default.
func Load(path string) ([]Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	var f scheduleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse schedule file %s: %w", path, err)
	}
	if len(f.Schools) == 0 {
		return nil, fmt.Errorf("schedule file %s: no schools defined", path)
	}

	schedules := make([]Schedule, 0, len(f.Schools))
	for _, raw := range f.Schools {
		s := Schedule{
			School:  core.School(strings.TrimSpace(raw.School)),
			Code:    strings.TrimSpace(raw.Code),
			Mode:    Mode(strings.TrimSpace(raw.Mode)),
			Periods: make([]Period, 0, len(raw.Periods)),
		}
		for _, rp := range raw.Periods {
			p := Period{Key: strings.TrimSpace(rp.Key), Match: rp.Match}
			if start := strings.TrimSpace(rp.Start); start != "" {
				p.Start = core.ParseDate(start)
				if p.Start.IsZero() {
					return nil, fmt.Errorf("schedule %s: period %q: bad start date %q", s.School, p.Key, start)
				}
			}
			s.Periods = append(s.Periods, p)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("schedule file %s: %w", path, err)
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}
