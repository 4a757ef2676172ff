package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

func TestSyncProgressShowsElapsedAfterDelay(t *testing.T) {
	started := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
	m := newSyncProgress("Syncing conversations...", nil, started)

	assert.Contains(t, m.View(), "Syncing conversations...")
	assert.NotContains(t, m.View(), "(")

	updated, _ := m.Update(spinner.TickMsg{Time: started.Add(3 * time.Second)})
	assert.Contains(t, updated.View(), "Syncing conversations... (3s)")

	finished, _ := updated.Update(syncFinishedMsg{})
	assert.Empty(t, finished.View())
}

func TestRunSyncSpinnerReturnsWorkError(t *testing.T) {
	boom := errors.New("boom")

	err := runSyncSpinner(context.Background(), &bytes.Buffer{}, "Syncing conversations...", func(context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}
