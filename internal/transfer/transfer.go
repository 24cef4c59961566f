package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"fw-transfer/internal/engine"
	"fw-transfer/internal/model"
	"fw-transfer/internal/parser"
	"fw-transfer/internal/writer"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	EnvProd    = "Prod"
	EnvNonProd = "NonProd"
)

// Result is always safe to show to a user: Message is set on success and on
// failure, Output only on success.
type Result struct {
	Success   bool
	Message   string
	Output    []byte
	FileName  string
	RuleCount int
	Err       error
}

// VariableSource supplies IP set variables for an environment suffix in
// place of the workbook's reference sheet.
type VariableSource interface {
	LoadVariables(environment string) ([]model.VariableDefinition, error)
}

// Transformer holds the collaborators of a transfer. It keeps no workbook
// state, so one value may serve concurrent calls.
type Transformer struct {
	Now       func() time.Time
	Variables VariableSource
	Logger    *slog.Logger
}

// Transform runs a transfer with the default clock and the workbook's own
// variables sheet.
func Transform(source, target []byte, region, environment string) Result {
	return (&Transformer{}).Transform(source, target, region, environment)
}

// EnvSuffix maps an environment name to the suffix used in sheet names.
func EnvSuffix(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), "prod") {
		return EnvProd
	}
	return EnvNonProd
}

func RulesSheetName(suffix string) string     { return "Rules " + suffix }
func VariablesSheetName(suffix string) string { return "IP set variables " + suffix }
func NewRulesSheetName(suffix string) string  { return "Rules " + suffix + " New" }

// OutputFileName names the produced rule list, e.g.
// InternalFW_RuleList_Tokyo_Prod_final.xlsx.
func OutputFileName(region, environment string) string {
	return fmt.Sprintf("InternalFW_RuleList_%s_%s_final.xlsx", CapitalizeRegion(region), EnvSuffix(environment))
}

// CapitalizeRegion upper-cases the first letter and lower-cases the rest.
func CapitalizeRegion(region string) string {
	region = strings.TrimSpace(region)
	if region == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(region)
	return string(unicode.ToUpper(r)) + strings.ToLower(region[size:])
}

func (t *Transformer) Transform(source, target []byte, region, environment string) (result Result) {
	suffix := EnvSuffix(environment)
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", uuid.NewString(), "region", region, "environment", suffix)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Transfer panicked", "panic", r)
			result = failure(fmt.Errorf("%w: %v", model.ErrUnexpected, r))
		}
	}()

	start := time.Now()
	out, count, err := t.run(source, target, suffix, logger)
	if err != nil {
		logger.Error("Transfer failed", "error", err)
		return failure(err)
	}

	name := OutputFileName(region, environment)
	logger.Info("Transfer complete", "file", name, "rules", count, "duration", time.Since(start))
	return Result{
		Success:   true,
		Message:   fmt.Sprintf("%s %s: %d rules written to %q.", CapitalizeRegion(region), suffix, count, NewRulesSheetName(suffix)),
		Output:    out,
		FileName:  name,
		RuleCount: count,
	}
}

func (t *Transformer) run(source, target []byte, suffix string, logger *slog.Logger) ([]byte, int, error) {
	rulesSheet := RulesSheetName(suffix)
	variablesSheet := VariablesSheetName(suffix)

	srcFile, err := excelize.OpenReader(bytes.NewReader(source))
	if err != nil {
		return nil, 0, fmt.Errorf("could not open source workbook: %w", err)
	}
	defer srcFile.Close()

	records, err := parser.ParseSourceWorkbook(srcFile, logger)
	if err != nil {
		return nil, 0, err
	}
	logger.Info("Source rows extracted", "account_id", records.AccountID, "additions", len(records.Rows))

	tgtFile, err := excelize.OpenReader(bytes.NewReader(target))
	if err != nil {
		return nil, 0, fmt.Errorf("could not open target workbook: %w", err)
	}
	defer tgtFile.Close()

	for _, sheet := range []string{rulesSheet, variablesSheet} {
		if idx, err := tgtFile.GetSheetIndex(sheet); err != nil || idx == -1 {
			return nil, 0, fmt.Errorf("%w: %q in target workbook", model.ErrMissingSheet, sheet)
		}
	}

	defs, err := parser.ParseVariableSheet(tgtFile, variablesSheet)
	if err != nil {
		return nil, 0, err
	}
	if t.Variables != nil {
		if defs, err = t.Variables.LoadVariables(suffix); err != nil {
			return nil, 0, fmt.Errorf("could not load ip set variables: %w", err)
		}
	}
	index := engine.NewVariableIndex(defs, logger)
	logger.Debug("Variable index built", "variables", len(defs), "addresses", index.Len())

	rules, err := engine.ExpandRules(records.Rows)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	final := engine.NumberRules(rules, records.AccountID, now(), index)

	if err := writer.NewSheetWriter(tgtFile, logger).Write(rulesSheet, NewRulesSheetName(suffix), final); err != nil {
		return nil, 0, err
	}

	buf, err := tgtFile.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("could not serialize workbook: %w", err)
	}
	return buf.Bytes(), len(final), nil
}

func failure(err error) Result {
	err = classify(err)
	return Result{
		Success: false,
		Message: "transfer failed: " + err.Error(),
		Err:     err,
	}
}

// classify folds anything that is not a known input problem into ErrUnexpected.
func classify(err error) error {
	for _, kind := range []error{model.ErrMissingSheet, model.ErrHeaderNotFound, model.ErrMalformedCell, model.ErrUnexpected} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", model.ErrUnexpected, err)
}
