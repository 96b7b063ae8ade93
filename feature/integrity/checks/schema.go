package checks

import (
	"fmt"
	"reflect"
	"strings"

	"fleet-sync/core/database"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing the history schema with its models.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Missing []string               `json:"missing_tables"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

type tabler interface {
	TableName() string
}

// CheckSchema verifies the database schema using GORM models as the source of truth.
// Every model must implement TableName.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		t, ok := m.(tabler)
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", m)
		}
		names = append(names, t.TableName())
	}

	missing, err := database.MissingTables(db, names...)
	if err != nil {
		return nil, err
	}

	report := &SchemaReport{
		Matched: len(missing) == 0,
		Missing: missing,
		Tables:  make(map[string]TableReport),
	}
	absent := make(map[string]bool, len(missing))
	for _, name := range missing {
		absent[name] = true
	}

	for i, m := range models {
		if absent[names[i]] {
			continue
		}
		tbl, err := checkTable(db, names[i], reflect.TypeOf(m))
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", names[i], err))
			report.Matched = false
			continue
		}
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[names[i]] = tbl
	}

	return report, nil
}

func checkTable(db *gorm.DB, tableName string, model reflect.Type) (TableReport, error) {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualCols, err := database.GetTableColumns(db, tableName)
	if err != nil {
		return tbl, err
	}
	actual := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actual[col.Field] = col
	}

	if model.Kind() == reflect.Ptr {
		model = model.Elem()
	}
	for i := 0; i < model.NumField(); i++ {
		gormTag := model.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue // associations carry no column
		}

		col, exists := actual[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			tbl.Status = "error"
			continue
		}

		// Only columns with an explicit type are compared, loosely.
		if expType := strings.ToLower(parseGormType(gormTag)); expType != "" && !strings.Contains(col.Type, expType) {
			tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", colName, expType, col.Type))
			tbl.Status = "error"
		}
	}
	return tbl, nil
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
