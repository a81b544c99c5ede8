package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avoelkl/mietscout/internal/mail"
	"github.com/avoelkl/mietscout/internal/score"
	"github.com/google/uuid"
)

// ErrCorrupted reports an unreadable ledger file. FromFile still returns a
// fresh ledger in that case so a damaged file never blocks a run.
var ErrCorrupted = errors.New("candidate ledger is not valid JSON")

const bodyExcerptLimit = 500

// Ledger is the append-only store of every evaluated application.
type Ledger struct {
	Candidates []*Entry
	Metadata   Metadata
}

type Metadata struct {
	Created        time.Time
	LastUpdated    time.Time
	TotalProcessed int
}

// Entry is one evaluated application. Entries are never updated in place; a
// reprocessed email produces a new entry.
type Entry struct {
	ID          string
	EmailID     string
	Sender      string
	Subject     string
	Date        time.Time
	ProcessedAt time.Time
	Score       *score.Record
	Excerpt     string
}

func New() *Ledger {
	now := time.Now()

	return &Ledger{
		Metadata: Metadata{
			Created:     now,
			LastUpdated: now,
		},
	}
}

// NewEntry builds a ledger entry for an evaluated message.
func NewEntry(msg *mail.Message, rec *score.Record) *Entry {
	return &Entry{
		ID:          uuid.NewString(),
		EmailID:     msg.ID,
		Sender:      msg.Sender,
		Subject:     msg.Subject,
		Date:        msg.Date,
		ProcessedAt: time.Now(),
		Score:       rec,
		Excerpt:     msg.Excerpt(bodyExcerptLimit),
	}
}

// FromFile loads a ledger. A missing or empty file yields a fresh ledger. A
// file that is not valid JSON also yields a fresh ledger, together with
// ErrCorrupted so the caller can surface the data loss.
func FromFile(path string) (*Ledger, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return New(), nil
	}

	var doc document
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	return fromDocument(&doc), nil
}

// ToFile writes the ledger, stamping last_updated. The parent directory is
// created when missing and the file is fully rewritten.
func (l *Ledger) ToFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	l.Metadata.LastUpdated = time.Now()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.toDocument()); err != nil {
		return err
	}

	return nil
}

// Has reports whether an email id was already evaluated.
func (l *Ledger) Has(emailID string) bool {
	for _, entry := range l.Candidates {
		if entry.EmailID == emailID {
			return true
		}
	}

	return false
}

// EmailIDs returns every evaluated email id.
func (l *Ledger) EmailIDs() []string {
	ids := make([]string, 0, len(l.Candidates))
	for _, entry := range l.Candidates {
		ids = append(ids, entry.EmailID)
	}

	return ids
}

// Append stores a new entry. An entry whose email id is already in the
// ledger is refused: stored candidates are never replaced or re-evaluated.
func (l *Ledger) Append(entry *Entry) bool {
	if l.Has(entry.EmailID) {
		return false
	}

	l.Candidates = append(l.Candidates, entry)
	l.Metadata.TotalProcessed++

	return true
}

func (l *Ledger) Len() int {
	return len(l.Candidates)
}

// Rankings returns the entries ordered by total score, best first. The
// stored order is left untouched.
func (l *Ledger) Rankings() []*Entry {
	ranked := make([]*Entry, len(l.Candidates))
	copy(ranked, l.Candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})

	return ranked
}

// DumpRankingsToTmpFile writes the ranked entries to a tmp file and returns
// the filename.
func (l *Ledger) DumpRankingsToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "rankings_*.json")
	if err != nil {
		return "", fmt.Errorf("creating a tmp file: %w", err)
	}
	defer file.Close()

	ranked := make([]*entryDocument, 0, l.Len())
	for _, entry := range l.Rankings() {
		ranked = append(ranked, entry.toDocument())
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")

	if err := enc.Encode(ranked); err != nil {
		return "", fmt.Errorf("encoding rankings: %w", err)
	}

	return file.Name(), nil
}

// The on-disk layout keeps the criterion scores inline in the score object
// next to total and bonus_points, so ledgers written by earlier versions of
// the tool stay readable.
type document struct {
	Candidates []*entryDocument  `json:"candidates"`
	Metadata   *metadataDocument `json:"metadata"`
}

type metadataDocument struct {
	Created        string `json:"created"`
	LastUpdated    string `json:"last_updated"`
	TotalProcessed int    `json:"total_processed"`
}

type entryDocument struct {
	ID          string         `json:"id,omitempty"`
	EmailID     string         `json:"email_id"`
	Sender      string         `json:"sender"`
	Subject     string         `json:"subject"`
	Date        string         `json:"date"`
	ProcessedAt string         `json:"processed_at"`
	Score       map[string]any `json:"score"`
	Reasoning   string         `json:"reasoning"`
	RedFlags    []string       `json:"red_flags"`
	EmailBody   string         `json:"email_body"`
}

func (l *Ledger) toDocument() *document {
	candidates := make([]*entryDocument, 0, len(l.Candidates))
	for _, entry := range l.Candidates {
		candidates = append(candidates, entry.toDocument())
	}

	return &document{
		Candidates: candidates,
		Metadata: &metadataDocument{
			Created:        l.Metadata.Created.Format(time.RFC3339),
			LastUpdated:    l.Metadata.LastUpdated.Format(time.RFC3339),
			TotalProcessed: l.Metadata.TotalProcessed,
		},
	}
}

func (e *Entry) toDocument() *entryDocument {
	rec := e.Score
	if rec == nil {
		rec = &score.Record{}
	}

	scoreDoc := map[string]any{
		"total":        rec.Total,
		"bonus_points": rec.BonusPoints,
	}
	for name, value := range rec.PerCriterion {
		scoreDoc[name] = value
	}

	flags := rec.RedFlags
	if flags == nil {
		flags = []string{}
	}

	return &entryDocument{
		ID:          e.ID,
		EmailID:     e.EmailID,
		Sender:      e.Sender,
		Subject:     e.Subject,
		Date:        e.Date.Format(time.RFC3339),
		ProcessedAt: e.ProcessedAt.Format(time.RFC3339),
		Score:       scoreDoc,
		Reasoning:   rec.Reasoning,
		RedFlags:    flags,
		EmailBody:   e.Excerpt,
	}
}

func fromDocument(doc *document) *Ledger {
	ledger := New()

	if doc.Metadata != nil {
		if created := parseTime(doc.Metadata.Created); !created.IsZero() {
			ledger.Metadata.Created = created
		}
		if updated := parseTime(doc.Metadata.LastUpdated); !updated.IsZero() {
			ledger.Metadata.LastUpdated = updated
		}
		ledger.Metadata.TotalProcessed = doc.Metadata.TotalProcessed
	}

	for _, entry := range doc.Candidates {
		if entry == nil {
			continue
		}
		ledger.Candidates = append(ledger.Candidates, entryFromDocument(entry))
	}

	return ledger
}

func entryFromDocument(doc *entryDocument) *Entry {
	rec := &score.Record{
		PerCriterion: make(map[string]float64),
		Reasoning:    doc.Reasoning,
		RedFlags:     doc.RedFlags,
	}

	for key, value := range doc.Score {
		switch key {
		case "total":
			rec.Total = asFloat(value)
		case "bonus_points":
			rec.BonusPoints = int(asFloat(value))
		default:
			rec.PerCriterion[key] = asFloat(value)
		}
	}

	return &Entry{
		ID:          doc.ID,
		EmailID:     doc.EmailID,
		Sender:      doc.Sender,
		Subject:     doc.Subject,
		Date:        parseTime(doc.Date),
		ProcessedAt: parseTime(doc.ProcessedAt),
		Score:       rec,
		Excerpt:     doc.EmailBody,
	}
}

func asFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// parseTime accepts RFC3339 timestamps as well as the zone-less ISO form
// earlier ledgers were written with.
func parseTime(value string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}
