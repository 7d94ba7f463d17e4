package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	AvatarURL         string        `env:"RELAY_AVATAR_URL"`
	SendConcurrency   int           `env:"SEND_CONCURRENCY"`
	ConfirmTimeout    time.Duration `env:"CONFIRM_TIMEOUT"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL"`

	// Antispam scrub; the feature is off when the word list is empty.
	SpamWords       string `env:"SPAM_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT"`
}

// Load reads the process environment, overlaid by a .env file when one
// is present in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}

// SpamWordList splits the comma-separated SPAM_WORDS value, dropping
// empty entries.
func (c Config) SpamWordList() []string {
	words := lo.Map(strings.Split(c.SpamWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Filter(words, func(w string, _ int) bool { return w != "" })
}

// CharacterRune validates that a replacement string holds exactly one
// character. An empty value falls back to '*'.
func CharacterRune(str string) (rune, error) {
	if str == "" {
		return '*', nil
	}
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
