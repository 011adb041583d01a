// Package config loads the server's HCL configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/calvinwijaya/blackjack-engine/internal/game"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerSettings
	Database DatabaseSettings
	Rules    RuleSettings
}

type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	FrontendURL string `hcl:"frontend_url,optional"`
}

// DatabaseSettings selects the bankroll database. An empty DSN runs
// without persistence.
type DatabaseSettings struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// RuleSettings mirrors game.Settings. Money values are kept as strings so
// they parse into exact decimals; unset booleans keep the house default.
type RuleSettings struct {
	DeckCount                     int    `hcl:"deck_count,optional"`
	StandOnSoft17                 *bool  `hcl:"stand_on_soft_17,optional"`
	MaxHands                      int    `hcl:"max_hands,optional"`
	AllowTenValueSplit            *bool  `hcl:"allow_ten_value_split,optional"`
	AllowResplitAces              *bool  `hcl:"allow_resplit_aces,optional"`
	RestrictSplitAcesToOneCard    *bool  `hcl:"restrict_split_aces_to_one_card,optional"`
	AllowDoubleDownAfterSplitAces *bool  `hcl:"allow_double_after_split_aces,optional"`
	MinBet                        string `hcl:"min_bet,optional"`
	MaxBet                        string `hcl:"max_bet,optional"`
	StartingBalance               string `hcl:"starting_balance,optional"`
}

// file is the on-disk layout; every block may be omitted.
type file struct {
	Server   *ServerSettings   `hcl:"server,block"`
	Database *DatabaseSettings `hcl:"database,block"`
	Rules    *RuleSettings     `hcl:"rules,block"`
}

func Default() *Config {
	rules := game.DefaultSettings()
	return &Config{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			FrontendURL: "http://localhost:3000",
		},
		Database: DatabaseSettings{
			Driver: "sqlite3",
			DSN:    "blackjack.db",
		},
		Rules: RuleSettings{
			DeckCount:                     rules.DeckCount,
			StandOnSoft17:                 boolPtr(rules.StandOnSoft17),
			MaxHands:                      rules.MaxHands,
			AllowTenValueSplit:            boolPtr(rules.AllowTenValueSplit),
			AllowResplitAces:              boolPtr(rules.AllowResplitAces),
			RestrictSplitAcesToOneCard:    boolPtr(rules.RestrictSplitAcesToOneCard),
			AllowDoubleDownAfterSplitAces: boolPtr(rules.AllowDoubleDownAfterSplitAces),
			MinBet:                        rules.MinBet.String(),
			MaxBet:                        rules.MaxBet.String(),
			StartingBalance:               rules.StartingBalance.String(),
		},
	}
}

// Load reads filename. A missing file yields Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if raw.Server != nil {
		cfg.Server.merge(*raw.Server)
	}
	if raw.Database != nil {
		cfg.Database.merge(*raw.Database)
	}
	if raw.Rules != nil {
		cfg.Rules.merge(*raw.Rules)
	}
	return cfg, nil
}

func (s *ServerSettings) merge(o ServerSettings) {
	if o.Address != "" {
		s.Address = o.Address
	}
	if o.Port != 0 {
		s.Port = o.Port
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.FrontendURL != "" {
		s.FrontendURL = o.FrontendURL
	}
}

func (d *DatabaseSettings) merge(o DatabaseSettings) {
	if o.Driver != "" {
		d.Driver = o.Driver
	}
	if o.DSN != "" {
		d.DSN = o.DSN
	}
}

func (r *RuleSettings) merge(o RuleSettings) {
	if o.DeckCount != 0 {
		r.DeckCount = o.DeckCount
	}
	if o.MaxHands != 0 {
		r.MaxHands = o.MaxHands
	}
	for _, b := range []struct{ dst, src **bool }{
		{&r.StandOnSoft17, &o.StandOnSoft17},
		{&r.AllowTenValueSplit, &o.AllowTenValueSplit},
		{&r.AllowResplitAces, &o.AllowResplitAces},
		{&r.RestrictSplitAcesToOneCard, &o.RestrictSplitAcesToOneCard},
		{&r.AllowDoubleDownAfterSplitAces, &o.AllowDoubleDownAfterSplitAces},
	} {
		if *b.src != nil {
			*b.dst = *b.src
		}
	}
	if o.MinBet != "" {
		r.MinBet = o.MinBet
	}
	if o.MaxBet != "" {
		r.MaxBet = o.MaxBet
	}
	if o.StartingBalance != "" {
		r.StartingBalance = o.StartingBalance
	}
}

// Validate checks the server block and returns the game settings the
// rules block describes.
func (c *Config) Validate() (game.Settings, error) {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return game.Settings{}, fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	return c.Settings()
}

// Settings converts the rules block into validated game settings.
func (c *Config) Settings() (game.Settings, error) {
	r := c.Rules
	s := game.Settings{
		DeckCount:                     r.DeckCount,
		StandOnSoft17:                 deref(r.StandOnSoft17),
		MaxHands:                      r.MaxHands,
		AllowTenValueSplit:            deref(r.AllowTenValueSplit),
		AllowResplitAces:              deref(r.AllowResplitAces),
		RestrictSplitAcesToOneCard:    deref(r.RestrictSplitAcesToOneCard),
		AllowDoubleDownAfterSplitAces: deref(r.AllowDoubleDownAfterSplitAces),
	}

	var err error
	if s.MinBet, err = parseAmount("min_bet", r.MinBet); err != nil {
		return game.Settings{}, err
	}
	if s.MaxBet, err = parseAmount("max_bet", r.MaxBet); err != nil {
		return game.Settings{}, err
	}
	if s.StartingBalance, err = parseAmount("starting_balance", r.StartingBalance); err != nil {
		return game.Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return game.Settings{}, err
	}
	return s, nil
}

// ServerAddress returns the listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is not a number", game.ErrInvalidSettings, name, value)
	}
	return d, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func deref(b *bool) bool {
	return b != nil && *b
}
