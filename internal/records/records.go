package records

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is one flattened row: one achievement carrying a copy of its
// student's identity fields.
//
// The comparison columns (name, department, type, status, approved_by) are
// stored lower-cased at load time. Every filter over the table relies on
// this precondition and lower-cases externally supplied values before
// matching; nothing re-normalizes per call.
type Record struct {
	StudentID   string
	Name        string
	Email       string
	Department  string
	DateOfBirth string

	AchievementID string
	Type          string
	Title         string
	Description   string
	Date          string
	Status        string
	ApprovedBy    string
	CreditAwarded float64
}

// Column names accepted by Field, filters, and aggregation plans.
const (
	ColName          = "name"
	ColEmail         = "email"
	ColStudentID     = "student_id"
	ColDepartment    = "department"
	ColDateOfBirth   = "date_of_birth"
	ColAchievementID = "achievement_id"
	ColType          = "type"
	ColTitle         = "title"
	ColDescription   = "description"
	ColDate          = "date"
	ColStatus        = "status"
	ColApprovedBy    = "approved_by"
	ColCreditAwarded = "credit_awarded"
)

// Columns lists every addressable column, in presentation order.
func Columns() []string {
	return []string{
		ColName, ColEmail, ColStudentID, ColDepartment, ColDateOfBirth,
		ColAchievementID, ColType, ColTitle, ColDescription, ColDate,
		ColStatus, ColApprovedBy, ColCreditAwarded,
	}
}

// Field returns the string value of the named column.
// credit_awarded is formatted with minimal digits.
func (r Record) Field(col string) (string, error) {
	switch col {
	case ColName:
		return r.Name, nil
	case ColEmail:
		return r.Email, nil
	case ColStudentID:
		return r.StudentID, nil
	case ColDepartment:
		return r.Department, nil
	case ColDateOfBirth:
		return r.DateOfBirth, nil
	case ColAchievementID:
		return r.AchievementID, nil
	case ColType:
		return r.Type, nil
	case ColTitle:
		return r.Title, nil
	case ColDescription:
		return r.Description, nil
	case ColDate:
		return r.Date, nil
	case ColStatus:
		return r.Status, nil
	case ColApprovedBy:
		return r.ApprovedBy, nil
	case ColCreditAwarded:
		return strconv.FormatFloat(r.CreditAwarded, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unknown column %q", col)
	}
}

// Numeric returns the numeric value of the named column. Only
// credit_awarded is numeric; any other column is an error.
func (r Record) Numeric(col string) (float64, error) {
	if col == ColCreditAwarded {
		return r.CreditAwarded, nil
	}
	return 0, fmt.Errorf("column %q is not numeric", col)
}

// Document renders the denormalized retrieval sentence for this record,
// embedding every identity and achievement field. Comparison columns are
// stored lower-cased, so display fields are title-cased back for natural
// reading; matching elsewhere is case-insensitive either way.
func (r Record) Document() string {
	var sb strings.Builder
	sb.WriteString("Student Name: " + Title(r.Name))
	sb.WriteString(". Student ID: " + r.StudentID)
	sb.WriteString(". Email: " + r.Email)
	sb.WriteString(". Date of Birth: " + r.DateOfBirth)
	sb.WriteString(". Department: " + Title(r.Department))
	sb.WriteString(". Achievement: " + Title(r.Type) + " - " + r.Title + ": " + r.Description)
	sb.WriteString(". Date: " + r.Date)
	sb.WriteString(". Status: " + Title(r.Status))
	sb.WriteString(". Approved By: " + Title(r.ApprovedBy))
	sb.WriteString(". Credits Awarded: " + strconv.FormatFloat(r.CreditAwarded, 'f', -1, 64) + ".")
	return sb.String()
}

// Table is the immutable, in-memory achievement table. Built once at
// process start; safe for concurrent reads without locking.
type Table struct {
	rows []Record
}

// NewTable builds a table directly from rows, applying the lower-casing
// invariant to the comparison columns. Used by tests and by Parse.
func NewTable(rows []Record) *Table {
	normalized := make([]Record, len(rows))
	for i, r := range rows {
		r.Name = strings.ToLower(r.Name)
		r.Department = strings.ToLower(r.Department)
		r.Type = strings.ToLower(r.Type)
		r.Status = strings.ToLower(r.Status)
		r.ApprovedBy = strings.ToLower(r.ApprovedBy)
		normalized[i] = r
	}
	return &Table{rows: normalized}
}

// Rows returns the backing slice. Callers must not mutate it.
func (t *Table) Rows() []Record {
	return t.rows
}

// Len returns the number of achievement rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// student mirrors one parent object of the nested source document.
type student struct {
	StudentID    string        `json:"student_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	DateOfBirth  string        `json:"dob"`
	Department   string        `json:"department"`
	Achievements []achievement `json:"achievements"`
}

type achievement struct {
	AchievementID string  `json:"achievement_id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	ApprovedBy    string  `json:"approved_by"`
	CreditAwarded float64 `json:"credit_awarded"`
}

// Load reads the nested students/achievements JSON file at path and
// flattens it into a Table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// Parse flattens the nested source document (one parent object per student
// containing an achievements array) into one row per achievement.
func Parse(r io.Reader) (*Table, error) {
	var students []student
	if err := json.NewDecoder(r).Decode(&students); err != nil {
		return nil, fmt.Errorf("decoding students: %w", err)
	}

	var rows []Record
	for _, s := range students {
		for _, a := range s.Achievements {
			rows = append(rows, Record{
				StudentID:     s.StudentID,
				Name:          s.Name,
				Email:         s.Email,
				Department:    s.Department,
				DateOfBirth:   s.DateOfBirth,
				AchievementID: a.AchievementID,
				Type:          a.Type,
				Title:         a.Title,
				Description:   a.Description,
				Date:          a.Date,
				Status:        a.Status,
				ApprovedBy:    a.ApprovedBy,
				CreditAwarded: a.CreditAwarded,
			})
		}
	}

	return NewTable(rows), nil
}

// Title capitalizes the first letter of each space-separated word, the
// display inverse of the lower-casing applied at load.
func Title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
