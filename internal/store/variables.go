package store

import (
	"database/sql"
	"fmt"
	"strings"

	"fw-transfer/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MariaDBVariableStore reads IP set variables kept in MariaDB instead of the
// rule list workbook.
type MariaDBVariableStore struct {
	db *sql.DB
}

func NewMariaDBVariableStore(dsn string) (*MariaDBVariableStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &MariaDBVariableStore{db: db}, nil
}

func (s *MariaDBVariableStore) Close() {
	s.db.Close()
}

// LoadVariables returns the variables of one environment ("Prod" or
// "NonProd") in table order, so later rows win on conflicting addresses.
func (s *MariaDBVariableStore) LoadVariables(environment string) ([]model.VariableDefinition, error) {
	rows, err := s.db.Query("SELECT variable_name, ip_addresses FROM cfg_ip_set_variable WHERE environment = ? ORDER BY id ASC", environment)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip set variables: %w", err)
	}
	defer rows.Close()

	var defs []model.VariableDefinition
	for rows.Next() {
		var name, addrs sql.NullString
		if err := rows.Scan(&name, &addrs); err != nil {
			return nil, err
		}
		if !name.Valid || !addrs.Valid || strings.TrimSpace(name.String) == "" || strings.TrimSpace(addrs.String) == "" {
			continue
		}
		defs = append(defs, model.VariableDefinition{
			Name:      strings.TrimSpace(name.String),
			Addresses: addrs.String,
		})
	}
	return defs, rows.Err()
}
