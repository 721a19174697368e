// cmd/netclassd/main_test.go
package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExit_ReleasesLogBeforeExiting(t *testing.T) {
	var order []string

	prev := osExit
	osExit = func(code int) {
		order = append(order, "exit")
		assert.Equal(t, 1, code)
	}
	t.Cleanup(func() { osExit = prev })

	core, logs := observer.New(zap.ErrorLevel)
	closeLog := func() error {
		order = append(order, "close")
		return nil
	}

	exit(zap.New(core), closeLog, 1, "source build failed", errors.New(`unknown kind "x"`))

	assert.Equal(t, []string{"close", "exit"}, order)
	entries := logs.FilterMessage("source build failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, `unknown kind "x"`, entries[0].ContextMap()["error"])
	}
}
