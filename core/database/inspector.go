package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
// Field names and types are lowercased.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// MissingTables returns the tables from want that do not exist in the current
// schema, sorted by name.
func MissingTables(db *gorm.DB, want ...string) ([]string, error) {
	var present []string
	err := db.Raw("SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()").Scan(&present).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	have := make(map[string]bool, len(present))
	for _, t := range present {
		have[strings.ToLower(t)] = true
	}

	var missing []string
	for _, t := range want {
		if !have[strings.ToLower(t)] {
			missing = append(missing, t)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// MissingColumns returns the columns from want that tableName lacks.
func MissingColumns(db *gorm.DB, tableName string, want ...string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.Field] = true
	}

	var missing []string
	for _, c := range want {
		if !have[strings.ToLower(c)] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}
