// Package game loads and validates the operator's game rules.
package game

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Operator runs one or more games.
type Operator struct {
	ID   int64
	Name string
}

// Game holds the validated rules of a single game.
type Game struct {
	ID                    uuid.UUID
	Name                  string
	OperatorID            int64
	Location              *time.Location
	OpenDraws             int
	AllowedParticipations []int
	ClosedStateDuration   time.Duration
	UnitStake             decimal.Decimal
	SystemSelection       string
	Levels                []draw.Level
	Classes               []wager.Class
	Schedule              draw.Schedule
}

// Config is the full contents of a game rules file.
type Config struct {
	Operator Operator
	Game     Game
}

type fileConfig struct {
	LotteryOperator struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"lottery_operator"`
	Game fileGame `yaml:"game"`
}

type fileGame struct {
	ID                         string           `yaml:"id"`
	Name                       string           `yaml:"name"`
	LotteryOperatorID          int64            `yaml:"lottery_operator_id"`
	TimeZone                   string           `yaml:"time_zone"`
	OpenDraws                  int              `yaml:"open_draws"`
	AllowedParticipations      []int            `yaml:"allowed_participations"`
	ClosedStateDurationSeconds int64            `yaml:"closed_state_duration_seconds"`
	UnitStake                  string           `yaml:"unit_stake"`
	SystemSelection            string           `yaml:"system_selection"`
	DrawLevels                 []fileDrawLevel  `yaml:"draw_levels"`
	WagerClasses               []fileWagerClass `yaml:"wager_classes"`
	Schedule                   fileSchedule     `yaml:"schedule"`
}

type fileDrawLevel struct {
	Name        string `yaml:"name"`
	Selections  int    `yaml:"selections"`
	MinValue    int    `yaml:"min_value"`
	MaxValue    int    `yaml:"max_value"`
	DependentOn string `yaml:"dependent_on"`
}

type fileWagerClass struct {
	Name               string   `yaml:"name"`
	Selections         []string `yaml:"selections"`
	NumberOfSelections []int    `yaml:"number_of_selections"`
	StakeMin           string   `yaml:"stake_min"`
	StakeMax           string   `yaml:"stake_max"`
	StakeIncrement     string   `yaml:"stake_increment"`
}

type fileSchedule struct {
	Daily *struct {
		Time string `yaml:"time"`
	} `yaml:"daily"`
	Weekly *struct {
		Days []string `yaml:"days"`
		Time string   `yaml:"time"`
	} `yaml:"weekly"`
	Interval *struct {
		Minutes int `yaml:"minutes"`
	} `yaml:"interval"`
}

// Load reads and validates a game rules file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read game config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("game config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML game rules.
func Parse(data []byte) (Config, error) {
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	game, err := buildGame(raw.Game)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Operator: Operator{ID: raw.LotteryOperator.ID, Name: strings.TrimSpace(raw.LotteryOperator.Name)},
		Game:     game,
	}, nil
}

func buildGame(raw fileGame) (Game, error) {
	var errs []error
	problem := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	g := Game{
		Name:                  strings.TrimSpace(raw.Name),
		OperatorID:            raw.LotteryOperatorID,
		OpenDraws:             raw.OpenDraws,
		AllowedParticipations: raw.AllowedParticipations,
		ClosedStateDuration:   time.Duration(raw.ClosedStateDurationSeconds) * time.Second,
		SystemSelection:       strings.TrimSpace(raw.SystemSelection),
	}
	if g.SystemSelection == "" {
		g.SystemSelection = wager.DefaultSystemSelection
	}

	id, err := uuid.Parse(strings.TrimSpace(raw.ID))
	if err != nil {
		problem("game id %q is not a UUID", raw.ID)
	}
	g.ID = id

	g.Location = time.UTC
	if tz := strings.TrimSpace(raw.TimeZone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			problem("time_zone %q: %v", tz, err)
		} else {
			g.Location = loc
		}
	}

	if g.OpenDraws < 1 {
		problem("open_draws must be at least 1")
	}
	if raw.ClosedStateDurationSeconds < 0 {
		problem("closed_state_duration_seconds must not be negative")
	}
	for _, n := range g.AllowedParticipations {
		if n < 1 {
			problem("allowed_participations must be positive, got %d", n)
		}
	}

	g.UnitStake = decimal.NewFromInt(1)
	if value := strings.TrimSpace(raw.UnitStake); value != "" {
		stake, err := decimal.NewFromString(value)
		if err != nil || !stake.IsPositive() {
			problem("unit_stake %q must be a positive decimal", value)
		} else {
			g.UnitStake = stake
		}
	}

	levelNames := make(map[string]bool, len(raw.DrawLevels))
	if len(raw.DrawLevels) == 0 {
		problem("at least one draw level is required")
	}
	for _, rl := range raw.DrawLevels {
		name := strings.TrimSpace(rl.Name)
		switch {
		case name == "":
			problem("draw level name is required")
			continue
		case levelNames[name]:
			problem("draw level %s is declared twice", name)
			continue
		}
		if rl.MaxValue < rl.MinValue {
			problem("draw level %s: max_value below min_value", name)
		} else if rl.Selections < 1 || rl.Selections > rl.MaxValue-rl.MinValue+1 {
			problem("draw level %s: selections must be between 1 and %d", name, rl.MaxValue-rl.MinValue+1)
		}
		dependent := strings.TrimSpace(rl.DependentOn)
		if dependent != "" && !levelNames[dependent] {
			problem("draw level %s depends on unknown or later level %s", name, dependent)
		}
		levelNames[name] = true
		g.Levels = append(g.Levels, draw.Level{
			ID:                 LevelID(g.ID, name),
			GameID:             g.ID,
			Name:               name,
			NumberOfSelections: rl.Selections,
			MinValue:           rl.MinValue,
			MaxValue:           rl.MaxValue,
			DependentOn:        dependent,
		})
	}

	for _, rc := range raw.WagerClasses {
		class, err := buildClass(rc, levelNames)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.Classes = append(g.Classes, class)
	}
	if len(raw.WagerClasses) == 0 {
		problem("at least one wager class is required")
	}
	if _, err := wager.NewValidator(g.Classes, g.Levels, g.SystemSelection); err != nil {
		errs = append(errs, err)
	}

	schedule, err := buildSchedule(raw.Schedule, g.Location)
	if err != nil {
		errs = append(errs, err)
	}
	g.Schedule = schedule

	if err := errors.Join(errs...); err != nil {
		return Game{}, err
	}
	return g, nil
}

func buildClass(rc fileWagerClass, levels map[string]bool) (wager.Class, error) {
	key, err := wager.ParseClassKey(rc.Name)
	if err != nil {
		return wager.Class{}, err
	}
	class := wager.Class{
		Name:               strings.TrimSpace(rc.Name),
		Key:                key,
		Selections:         rc.Selections,
		NumberOfSelections: rc.NumberOfSelections,
	}
	if len(rc.Selections) == 0 {
		return wager.Class{}, fmt.Errorf("wager class %s has no selections", class.Name)
	}
	if len(rc.Selections) != len(rc.NumberOfSelections) {
		return wager.Class{}, fmt.Errorf("wager class %s: selections and number_of_selections differ in length", class.Name)
	}
	for i, name := range rc.Selections {
		if !levels[name] {
			return wager.Class{}, fmt.Errorf("wager class %s references unknown draw level %s", class.Name, name)
		}
		if rc.NumberOfSelections[i] < 1 {
			return wager.Class{}, fmt.Errorf("wager class %s: selection %s needs a positive count", class.Name, name)
		}
	}

	parse := func(field, value string) (decimal.Decimal, error) {
		if strings.TrimSpace(value) == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || d.IsNegative() {
			return decimal.Zero, fmt.Errorf("wager class %s: %s %q must be a non-negative decimal", class.Name, field, value)
		}
		return d, nil
	}
	if class.StakeMin, err = parse("stake_min", rc.StakeMin); err != nil {
		return wager.Class{}, err
	}
	if class.StakeMax, err = parse("stake_max", rc.StakeMax); err != nil {
		return wager.Class{}, err
	}
	if class.StakeIncrement, err = parse("stake_increment", rc.StakeIncrement); err != nil {
		return wager.Class{}, err
	}
	if class.StakeMax.IsPositive() && class.StakeMax.LessThan(class.StakeMin) {
		return wager.Class{}, fmt.Errorf("wager class %s: stake_max below stake_min", class.Name)
	}
	return class, nil
}

func buildSchedule(raw fileSchedule, loc *time.Location) (draw.Schedule, error) {
	kinds := 0
	for _, set := range []bool{raw.Daily != nil, raw.Weekly != nil, raw.Interval != nil} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, fmt.Errorf("schedule must set exactly one of daily, weekly or interval")
	}
	switch {
	case raw.Daily != nil:
		return draw.Daily(raw.Daily.Time, loc)
	case raw.Weekly != nil:
		days := make([]time.Weekday, 0, len(raw.Weekly.Days))
		for _, name := range raw.Weekly.Days {
			day, err := draw.ParseWeekday(name)
			if err != nil {
				return nil, err
			}
			days = append(days, day)
		}
		return draw.Weekly(days, raw.Weekly.Time, loc)
	default:
		if raw.Interval.Minutes <= 0 {
			return nil, fmt.Errorf("interval schedule needs positive minutes")
		}
		return draw.Interval{Every: time.Duration(raw.Interval.Minutes) * time.Minute}, nil
	}
}

// LevelID derives a stable draw level id from the game id and level name.
func LevelID(gameID uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(gameID, []byte(name))
}

// Validator builds the board validator for the game.
func (g Game) Validator() (*wager.Validator, error) {
	return wager.NewValidator(g.Classes, g.Levels, g.SystemSelection)
}

// ParticipationAllowed reports whether a wager may span n draws. An empty
// allow list permits any count.
func (g Game) ParticipationAllowed(n int) bool {
	if len(g.AllowedParticipations) == 0 {
		return true
	}
	for _, allowed := range g.AllowedParticipations {
		if allowed == n {
			return true
		}
	}
	return false
}
