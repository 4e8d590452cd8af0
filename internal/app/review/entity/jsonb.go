package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Составные поля (поля формы, оценки, заметки, история) хранятся в PostgreSQL
// как JSONB колонки. GORM подключает их через driver.Valuer / sql.Scanner

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported type %T for JSONB column", value)
	}
}

type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *StringMap) Scan(value interface{}) error {
	return jsonbScan(m, value)
}

type ScoreMap map[string]int

func (m ScoreMap) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *ScoreMap) Scan(value interface{}) error {
	return jsonbScan(m, value)
}

type NoteMap map[string]Note

func (m NoteMap) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *NoteMap) Scan(value interface{}) error {
	return jsonbScan(m, value)
}

type FloatMap map[string]float64

func (m FloatMap) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *FloatMap) Scan(value interface{}) error {
	return jsonbScan(m, value)
}

type IntMap map[string]int

func (m IntMap) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *IntMap) Scan(value interface{}) error {
	return jsonbScan(m, value)
}

type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *StringList) Scan(value interface{}) error {
	return jsonbScan(l, value)
}

type FieldList []SubmissionField

func (l FieldList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *FieldList) Scan(value interface{}) error {
	return jsonbScan(l, value)
}

type CategoryList []ReviewCategory

func (l CategoryList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *CategoryList) Scan(value interface{}) error {
	return jsonbScan(l, value)
}

type HistoryList []SubmissionSummary

func (l HistoryList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *HistoryList) Scan(value interface{}) error {
	return jsonbScan(l, value)
}
