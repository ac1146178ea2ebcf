package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Init("release", "warn", "json")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	// 非法级别回退到 info
	Init("release", "verbose", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Init("debug", "", "")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
