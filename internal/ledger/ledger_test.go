package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avoelkl/mietscout/internal/mail"
	"github.com/avoelkl/mietscout/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(total float64) *score.Record {
	return &score.Record{
		PerCriterion: map[string]float64{
			"financial_capability": 85,
			"non_smoking":          90,
			"timing_alignment":     80,
			"german_residency":     70,
			"tidiness_cleanliness": 75,
		},
		Total:       total,
		BonusPoints: 5,
		Reasoning:   "Solid applicant",
		RedFlags:    []string{},
	}
}

func sampleMessage(id string) *mail.Message {
	return &mail.Message{
		ID:      id,
		Sender:  "anna@example.com",
		Subject: "Bewerbung Zwischenmiete",
		Date:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Body:    "Hallo, ich bin Nichtraucherin und suche ab September.",
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "candidates.json")

	led := New()
	led.Append(NewEntry(sampleMessage("m1"), sampleRecord(87)))
	led.Append(NewEntry(sampleMessage("m2"), sampleRecord(62.5)))
	created := led.Metadata.Created

	require.NoError(t, led.ToFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)

	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, 2, loaded.Metadata.TotalProcessed)
	assert.WithinDuration(t, created, loaded.Metadata.Created, time.Second)

	entry := loaded.Candidates[0]
	assert.Equal(t, "m1", entry.EmailID)
	assert.Equal(t, "anna@example.com", entry.Sender)
	assert.Equal(t, 87.0, entry.Score.Total)
	assert.Equal(t, 5, entry.Score.BonusPoints)
	assert.Equal(t, 90.0, entry.Score.Criterion("non_smoking"))
	assert.Equal(t, "Solid applicant", entry.Score.Reasoning)
	assert.Empty(t, entry.Score.RedFlags)
	assert.True(t, entry.Date.Equal(sampleMessage("m1").Date))
}

func TestFileLayoutKeepsScoresInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")

	led := New()
	led.Append(NewEntry(sampleMessage("m1"), sampleRecord(87)))
	require.NoError(t, led.ToFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	candidates, ok := doc["candidates"].([]any)
	require.True(t, ok)
	require.Len(t, candidates, 1)

	candidate := candidates[0].(map[string]any)
	scoreDoc := candidate["score"].(map[string]any)

	assert.Equal(t, 87.0, scoreDoc["total"])
	assert.Equal(t, 5.0, scoreDoc["bonus_points"])
	assert.Equal(t, 90.0, scoreDoc["non_smoking"])
	assert.Equal(t, []any{}, candidate["red_flags"])
	assert.NotEmpty(t, candidate["id"])
	assert.NotEmpty(t, candidate["processed_at"])

	metadata := doc["metadata"].(map[string]any)
	assert.Equal(t, 1.0, metadata["total_processed"])
	assert.NotEmpty(t, metadata["created"])
	assert.NotEmpty(t, metadata["last_updated"])
}

func TestFromFileMissingStartsFresh(t *testing.T) {
	led, err := FromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, 0, led.Len())
	assert.False(t, led.Metadata.Created.IsZero())
}

func TestFromFileEmptyStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	led, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, led.Len())
}

func TestFromFileCorruptedStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	led, err := FromFile(path)
	require.ErrorIs(t, err, ErrCorrupted)
	require.NotNil(t, led)
	assert.Equal(t, 0, led.Len())
}

func TestFromFileReadsZonelessTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	raw := `{
  "candidates": [
    {
      "email_id": "legacy1",
      "sender": "ben@example.com",
      "subject": "Anfrage",
      "date": "2025-09-01T12:30:45.123456",
      "processed_at": "2025-09-01T12:31:00",
      "score": {"total": 71.5, "financial_capability": 70, "bonus_points": 0},
      "reasoning": "ok",
      "red_flags": [],
      "email_body": "Hallo"
    }
  ],
  "metadata": {"created": "2025-09-01T12:00:00", "last_updated": "2025-09-01T12:31:00", "total_processed": 1}
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	led, err := FromFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, led.Len())

	entry := led.Candidates[0]
	assert.Equal(t, 71.5, entry.Score.Total)
	assert.Equal(t, 70.0, entry.Score.Criterion("financial_capability"))
	assert.Equal(t, 2025, entry.Date.Year())
	assert.Equal(t, 1, led.Metadata.TotalProcessed)
}

func TestToFileTruncatesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")

	big := New()
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		big.Append(NewEntry(sampleMessage(id), sampleRecord(50)))
	}
	require.NoError(t, big.ToFile(path))

	small := New()
	small.Append(NewEntry(sampleMessage("only"), sampleRecord(50)))
	require.NoError(t, small.ToFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.Equal(t, "only", loaded.Candidates[0].EmailID)
}

func TestHasAndAppend(t *testing.T) {
	led := New()
	assert.False(t, led.Has("m1"))

	assert.True(t, led.Append(NewEntry(sampleMessage("m1"), sampleRecord(80))))

	assert.True(t, led.Has("m1"))
	assert.False(t, led.Has("m2"))
	assert.Equal(t, []string{"m1"}, led.EmailIDs())
	assert.Equal(t, 1, led.Metadata.TotalProcessed)
}

func TestAppendRefusesDuplicateEmailID(t *testing.T) {
	led := New()
	require.True(t, led.Append(NewEntry(sampleMessage("m1"), sampleRecord(80))))

	assert.False(t, led.Append(NewEntry(sampleMessage("m1"), sampleRecord(95))))

	require.Equal(t, 1, led.Len())
	assert.Equal(t, 80.0, led.Candidates[0].Score.Total)
	assert.Equal(t, 1, led.Metadata.TotalProcessed)
}

func TestRankingsSortedBestFirst(t *testing.T) {
	led := New()
	led.Append(NewEntry(sampleMessage("low"), sampleRecord(40)))
	led.Append(NewEntry(sampleMessage("high"), sampleRecord(92)))
	led.Append(NewEntry(sampleMessage("mid"), sampleRecord(65)))

	ranked := led.Rankings()

	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].EmailID)
	assert.Equal(t, "mid", ranked[1].EmailID)
	assert.Equal(t, "low", ranked[2].EmailID)

	// stored order untouched
	assert.Equal(t, "low", led.Candidates[0].EmailID)
}

func TestDumpRankingsToTmpFile(t *testing.T) {
	led := New()
	led.Append(NewEntry(sampleMessage("low"), sampleRecord(40)))
	led.Append(NewEntry(sampleMessage("high"), sampleRecord(92)))

	filename, err := led.DumpRankingsToTmpFile()
	require.NoError(t, err)
	defer os.Remove(filename)

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)

	var dumped []*entryDocument
	require.NoError(t, json.Unmarshal(raw, &dumped))

	require.Len(t, dumped, 2)
	assert.Equal(t, "high", dumped[0].EmailID)
	assert.Equal(t, "low", dumped[1].EmailID)
}

func TestNewEntryBoundsExcerpt(t *testing.T) {
	msg := sampleMessage("m1")
	msg.Body = strings.Repeat("x", 600)

	entry := NewEntry(msg, sampleRecord(50))

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, strings.Repeat("x", 500)+"...", entry.Excerpt)
	assert.False(t, entry.ProcessedAt.IsZero())
}
