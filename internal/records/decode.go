package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
)

// Document is a loosely typed record as it arrives from a client or document store.
type Document map[string]any

// FieldError describes a rejected document field. It matches scoring.ErrInvalidInput.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return scoring.ErrInvalidInput
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// Field aliases accepted from the different client generations.
var (
	idKeys        = []string{"id"}
	ownerKeys     = []string{"user_id", "kullaniciId", "owner_id"}
	subjectKeys   = []string{"course_name", "dersAdi", "subject"}
	correctKeys   = []string{"correct_count", "dogruSayisi", "correct", "dogru"}
	wrongKeys     = []string{"wrong_count", "yanlisSayisi", "wrong", "yanlis"}
	emptyKeys     = []string{"empty_count", "bosSayisi", "empty", "bos"}
	createdKeys   = []string{"created_at", "createdAt"}
	examNameKeys  = []string{"exam_name", "ad", "name"}
	publisherKeys = []string{"publisher", "yayin"}
	examDateKeys  = []string{"exam_date"}

	// Older exam documents store social studies under its unit name.
	subjectKeyAliases = map[string][]string{
		"sosyal": {"inkilap"},
	}
)

// DecodeTestResult validates a practice test document. Missing counts default
// to zero and a missing timestamp stays zero; malformed values are rejected.
func DecodeTestResult(doc Document) (TestResult, error) {
	var (
		r   TestResult
		err error
	)
	if r.ID, err = optionalString(doc, "id", idKeys); err != nil {
		return TestResult{}, err
	}
	if r.OwnerID, err = optionalString(doc, "user_id", ownerKeys); err != nil {
		return TestResult{}, err
	}
	if r.Subject, err = optionalString(doc, "course_name", subjectKeys); err != nil {
		return TestResult{}, err
	}
	if r.Score, err = decodeScore(doc, ""); err != nil {
		return TestResult{}, err
	}
	if r.Topics, err = decodeTopics(doc); err != nil {
		return TestResult{}, err
	}
	if r.CreatedAt, err = optionalTime(doc, "created_at", createdKeys); err != nil {
		return TestResult{}, err
	}
	if err := r.Validate(); err != nil {
		return TestResult{}, err
	}
	return r, nil
}

// DecodeExamResult validates a mock exam document in either the nested
// ({"turkce": {"dogru": 16, ...}}) or flat ("turkce_correct") layout.
// Subjects absent from the document are recorded with zero counts.
func DecodeExamResult(doc Document, catalog *curriculum.Catalog) (ExamResult, error) {
	var (
		e   ExamResult
		err error
	)
	if e.ID, err = optionalString(doc, "id", idKeys); err != nil {
		return ExamResult{}, err
	}
	if e.OwnerID, err = optionalString(doc, "user_id", ownerKeys); err != nil {
		return ExamResult{}, err
	}
	if e.Name, err = optionalString(doc, "exam_name", examNameKeys); err != nil {
		return ExamResult{}, err
	}
	if e.Publisher, err = optionalString(doc, "publisher", publisherKeys); err != nil {
		return ExamResult{}, err
	}
	if e.CreatedAt, err = optionalTime(doc, "created_at", createdKeys); err != nil {
		return ExamResult{}, err
	}
	if e.CreatedAt.IsZero() {
		if e.CreatedAt, err = optionalTime(doc, "exam_date", examDateKeys); err != nil {
			return ExamResult{}, err
		}
	}

	nested, _ := doc["subjects"].(map[string]any)
	e.Subjects = make(map[string]scoring.SubjectScore, len(catalog.Names()))
	for _, subject := range catalog.Subjects() {
		score, err := decodeExamSubject(doc, nested, subject)
		if err != nil {
			return ExamResult{}, err
		}
		e.Subjects[subject.Name] = score
	}

	if err := e.Validate(catalog); err != nil {
		return ExamResult{}, err
	}
	return e, nil
}

// DecodeMistake validates a mistake notebook document. Status defaults to open.
func DecodeMistake(doc Document) (MistakeEntry, error) {
	var (
		m   MistakeEntry
		err error
	)
	if m.ID, err = optionalString(doc, "id", idKeys); err != nil {
		return MistakeEntry{}, err
	}
	if m.OwnerID, err = optionalString(doc, "user_id", ownerKeys); err != nil {
		return MistakeEntry{}, err
	}
	if m.TestResultID, err = optionalString(doc, "test_result_id", []string{"test_result_id", "testResultId"}); err != nil {
		return MistakeEntry{}, err
	}
	if m.Subject, err = optionalString(doc, "course_name", subjectKeys); err != nil {
		return MistakeEntry{}, err
	}
	if m.Note, err = optionalString(doc, "note", []string{"note"}); err != nil {
		return MistakeEntry{}, err
	}
	if m.ImageURL, err = optionalString(doc, "image_url", []string{"image_url", "imageUrl"}); err != nil {
		return MistakeEntry{}, err
	}
	if m.Topics, err = decodeTopics(doc); err != nil {
		return MistakeEntry{}, err
	}
	if m.CreatedAt, err = optionalTime(doc, "created_at", createdKeys); err != nil {
		return MistakeEntry{}, err
	}
	next, err := optionalTime(doc, "next_review_at", []string{"next_review_at", "nextReviewAt"})
	if err != nil {
		return MistakeEntry{}, err
	}
	if !next.IsZero() {
		m.NextReviewAt = &next
	}

	status, err := optionalString(doc, "status", []string{"status"})
	if err != nil {
		return MistakeEntry{}, err
	}
	if status == "" {
		m.Status = MistakeOpen
	} else if m.Status, err = ParseMistakeStatus(status); err != nil {
		return MistakeEntry{}, err
	}

	if strings.TrimSpace(m.OwnerID) == "" {
		return MistakeEntry{}, fieldError("user_id", "required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return MistakeEntry{}, fieldError("course_name", "required")
	}
	return m, nil
}

func decodeExamSubject(doc Document, nested map[string]any, subject curriculum.Subject) (scoring.SubjectScore, error) {
	if v, ok := nested[subject.Name]; ok {
		inner, ok := v.(map[string]any)
		if !ok {
			return scoring.SubjectScore{}, fieldError("subjects."+subject.Name, "must be an object")
		}
		return decodeScore(Document(inner), "subjects."+subject.Name+".")
	}

	for _, key := range append([]string{subject.Key}, subjectKeyAliases[subject.Key]...) {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		inner, ok := v.(map[string]any)
		if !ok {
			return scoring.SubjectScore{}, fieldError(key, "must be an object")
		}
		return decodeScore(Document(inner), key+".")
	}

	flat := Document{}
	for _, suffix := range []string{"correct", "wrong", "empty"} {
		if v, ok := doc[subject.Key+"_"+suffix]; ok {
			flat[suffix] = v
		}
	}
	return decodeScore(flat, subject.Key+"_")
}

func decodeScore(doc Document, prefix string) (scoring.SubjectScore, error) {
	var (
		s   scoring.SubjectScore
		err error
	)
	if s.Correct, err = optionalCount(doc, prefix+"correct", correctKeys); err != nil {
		return s, err
	}
	if s.Wrong, err = optionalCount(doc, prefix+"wrong", wrongKeys); err != nil {
		return s, err
	}
	if s.Empty, err = optionalCount(doc, prefix+"empty", emptyKeys); err != nil {
		return s, err
	}
	return s, nil
}

func decodeTopics(doc Document) ([]string, error) {
	raw, ok := doc["topics"]
	if !ok || raw == nil {
		return []string{}, nil
	}
	switch v := raw.(type) {
	case []string:
		return normalizeTopics(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fieldError(fmt.Sprintf("topics[%d]", i), "must be a string")
			}
			out = append(out, s)
		}
		return normalizeTopics(out), nil
	default:
		return nil, fieldError("topics", "must be a list of strings")
	}
}

func lookup(doc Document, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func optionalString(doc Document, field string, keys []string) (string, error) {
	v, ok := lookup(doc, keys)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(field, "must be a string")
	}
	return strings.TrimSpace(s), nil
}

func optionalCount(doc Document, field string, keys []string) (int, error) {
	v, ok := lookup(doc, keys)
	if !ok {
		return 0, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fieldError(field, err.Error())
	}
	if n < 0 {
		return 0, fieldError(field, "must not be negative")
	}
	return n, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("must be a whole number")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return i, nil
	default:
		return 0, fmt.Errorf("must be a number")
	}
}

func optionalTime(doc Document, field string, keys []string) (time.Time, error) {
	v, ok := lookup(doc, keys)
	if !ok {
		return time.Time{}, nil
	}
	t, err := toTime(v)
	if err != nil {
		return time.Time{}, fieldError(field, err.Error())
	}
	return t, nil
}

// toTime accepts time values, RFC 3339 strings, YYYY-MM-DD dates and epoch milliseconds.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return time.Time{}, fmt.Errorf("invalid epoch value")
		}
		return time.UnixMilli(int64(t)).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch value")
		}
		return time.UnixMilli(ms).UTC(), nil
	case map[string]any:
		// Firestore timestamps serialized as {"seconds": ..., "nanoseconds": ...}.
		sec, okSec := t["seconds"]
		if !okSec {
			sec, okSec = t["_seconds"]
		}
		if !okSec {
			return time.Time{}, fmt.Errorf("unsupported timestamp object")
		}
		s, err := toInt(sec)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid seconds")
		}
		var ns int
		if raw, ok := t["nanoseconds"]; ok {
			if ns, err = toInt(raw); err != nil {
				return time.Time{}, fmt.Errorf("invalid nanoseconds")
			}
		}
		return time.Unix(int64(s), int64(ns)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
