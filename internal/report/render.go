// Package report renders a run result into the CSV report tree: a teachers
// view and an accounts view per class, plus the combined defaulter list.
// Rendering is separated from writing so the HTTP layer can zip a run
// without touching disk.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"feetrack/internal/core"
	"feetrack/internal/services"
)

// CombinedFileName is the cross-school defaulter list at the tree root.
const CombinedFileName = "fee_and_opening_balance_defaulters.csv"

// File is one rendered report, Path relative to the output root with
// forward slashes.
type File struct {
	Path string
	Data []byte
}

// Render produces every report file for a run: per-class teachers and
// accounts views for each school, then the combined defaulter list.
func Render(result services.RunResult) ([]File, error) {
	var files []File
	for _, school := range result.Schools {
		rendered, err := renderSchool(school)
		if err != nil {
			return nil, err
		}
		files = append(files, rendered...)
	}
	combined, err := renderCombined(result.Combined)
	if err != nil {
		return nil, err
	}
	files = append(files, combined)
	return files, nil
}

func renderSchool(school services.SchoolReport) ([]File, error) {
	if len(school.Students) == 0 {
		return nil, nil
	}

	type class struct {
		grade, section string
	}
	groups := make(map[class][]core.StudentFeeSummary)
	for _, st := range school.Students {
		k := class{st.Grade, st.Section}
		groups[k] = append(groups[k], st)
	}
	classes := make([]class, 0, len(groups))
	for k := range groups {
		classes = append(classes, k)
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].grade != classes[j].grade {
			return classes[i].grade < classes[j].grade
		}
		return classes[i].section < classes[j].section
	})

	var files []File
	for _, k := range classes {
		students := groups[k]
		sort.SliceStable(students, func(i, j int) bool {
			return students[i].StudentName < students[j].StudentName
		})

		grade := sanitize(k.grade)
		section := sanitize(k.section)
		name := fmt.Sprintf("%s %s %s.csv", school.Schedule.Code, grade, section)

		teachers, err := renderClass(students, school.DueKeys, teacherCell, false)
		if err != nil {
			return nil, err
		}
		files = append(files, File{
			Path: joinPath("teachers", string(school.Schedule.School), grade, name),
			Data: teachers,
		})

		accounts, err := renderClass(students, school.DueKeys, accountsCell, true)
		if err != nil {
			return nil, err
		}
		files = append(files, File{
			Path: joinPath("accounts", string(school.Schedule.School), grade, name),
			Data: accounts,
		})
	}
	return files, nil
}

// renderClass writes one class CSV. cell decides how a period renders;
// withTotal appends the Total Outstanding column of the accounts view.
func renderClass(students []core.StudentFeeSummary, dueKeys []string, cell func(core.PeriodStatus) string, withTotal bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"Student Name", "Enrollment No", "Grade", "Section"}, dueKeys...)
	if withTotal {
		header = append(header, "Total Outstanding")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, st := range students {
		record := []string{st.StudentName, st.EnrollmentCode, st.Grade, st.Section}
		for _, key := range dueKeys {
			record = append(record, cell(st.Periods[key]))
		}
		if withTotal {
			record = append(record, st.Total.String())
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderCombined(rows []core.CombinedDefaulter) (File, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Customer ID", "Student Name", "School", "Grade", "Section", "Status",
		"Opening Balance", "Total Paid Opening Balance", "Remaining Opening Balance",
	}
	if err := w.Write(header); err != nil {
		return File{}, err
	}
	for _, d := range rows {
		record := []string{
			d.CustomerID, d.StudentName, string(d.School), d.Grade, d.Section, d.Status,
			d.Opening.StringFixed(2), d.Paid.StringFixed(2), d.Remaining.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return File{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return File{}, err
	}
	return File{Path: CombinedFileName, Data: buf.Bytes()}, nil
}

// teacherCell renders payment standing for class teachers. Unbilled and
// not-yet-due periods stay blank on purpose.
func teacherCell(p core.PeriodStatus) string {
	switch p.State {
	case core.PeriodOverdue:
		return "Unpaid"
	case core.PeriodPaid:
		return "Paid"
	default:
		return ""
	}
}

// accountsCell renders the owed amount. Paid periods show 0, never the
// internal paid marker.
func accountsCell(p core.PeriodStatus) string {
	if p.State == core.PeriodOverdue {
		return p.Amount.String()
	}
	return "0"
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "/", "_"))
}

func joinPath(parts ...string) string {
	return strings.Join(parts, "/")
}
