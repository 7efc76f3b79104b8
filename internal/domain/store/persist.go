package store

import (
	"encoding/json"
	"time"

	"emprec/internal/domain/employee"
	"emprec/internal/platform/i18n"
)

// Storage keys shared with the browser build.
const (
	KeyRecords  = "employee-management-data"
	KeyLanguage = "employee-management-language"
)

// load reads the persisted collection and language. Missing or unreadable
// values leave the defaults in place.
func (s *Store) load() {
	raw, ok, err := s.backend.GetItem(KeyRecords)
	switch {
	case err != nil:
		s.logger.Warn("load records failed", "key", KeyRecords, "err", err)
	case ok && raw != "":
		records, err := DecodeRecords(raw)
		if err != nil {
			s.logger.Warn("persisted records unreadable, starting empty", "key", KeyRecords, "err", err)
			break
		}
		s.records = records
		for _, rec := range records {
			if rec.UpdatedAt.After(s.lastStamp) {
				s.lastStamp = rec.UpdatedAt
			}
		}
	}

	lang, ok, err := s.backend.GetItem(KeyLanguage)
	if err != nil {
		s.logger.Warn("load language failed", "key", KeyLanguage, "err", err)
		return
	}
	if ok {
		if l := i18n.Language(lang); l.Valid() {
			s.language = l
		} else {
			s.logger.Warn("persisted language ignored", "value", lang)
		}
	}
}

// DecodeRecords parses a persisted collection. Entries without an id are
// dropped.
func DecodeRecords(raw string) ([]employee.Employee, error) {
	var decoded []employee.Employee
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	records := make([]employee.Employee, 0, len(decoded))
	for _, rec := range decoded {
		if rec.ID == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func EncodeRecords(records []employee.Employee) (string, error) {
	if records == nil {
		records = []employee.Employee{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Persistence is best effort: failures are logged and counted, memory stays
// authoritative.
func (s *Store) persistRecordsLocked() {
	raw, err := EncodeRecords(s.records)
	if err != nil {
		s.metrics.Persist(err, 0)
		s.logger.Warn("encode records failed", "err", err)
		return
	}
	s.write(KeyRecords, raw)
}

func (s *Store) persistLanguageLocked() {
	s.write(KeyLanguage, string(s.language))
}

func (s *Store) write(key, value string) {
	start := time.Now()
	err := s.backend.SetItem(key, value)
	s.metrics.Persist(err, time.Since(start))
	if err != nil {
		s.logger.Warn("persist failed", "key", key, "err", err)
	}
}
