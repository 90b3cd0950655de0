package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/constprop/internal/compiler"
	"github.com/roach88/constprop/internal/ir"
)

// LoadResult contains the functions compiled from a specs directory.
type LoadResult struct {
	Functions []*ir.Function
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFunctions loads the CUE package in dir and compiles every function
// it declares. If only is not empty, just that function is returned.
func LoadFunctions(dir, only string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	result := &LoadResult{FileCount: len(cueFiles)}

	fnsVal := value.LookupPath(cue.ParsePath("function"))
	if !fnsVal.Exists() {
		return nil, &LoadError{Code: ErrCodeNoFunctions, Message: "no functions found in specs"}
	}
	iter, err := fnsVal.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating functions: %v", err)}
	}
	for iter.Next() {
		if only != "" && iter.Selector().String() != only {
			continue
		}
		fn, err := compiler.CompileFunction(iter.Value())
		if err != nil {
			return nil, convertCompileError(err, "function."+iter.Selector().String())
		}
		result.Functions = append(result.Functions, fn)
	}

	if len(result.Functions) == 0 {
		if only != "" {
			return nil, &LoadError{Code: ErrCodeNoFunctions, Message: fmt.Sprintf("function %q not found in specs", only)}
		}
		return nil, &LoadError{Code: ErrCodeNoFunctions, Message: "no functions found in specs"}
	}
	return result, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoFunctions = "E007" // No (matching) functions declared

	// Function compilation errors
	ErrCodeSchema       = "E101" // Value does not match the function schema
	ErrCodeInvalidOp    = "E102" // Unknown instruction
	ErrCodeInvalidType  = "E103" // Unparseable or unsuitable type
	ErrCodeInvalidValue = "E104" // Literal out of range or malformed
	ErrCodeOperands     = "E110" // Undefined or miscounted operands or targets
	ErrCodeNaming       = "E111" // Duplicate or misplaced value name or block label
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeSchema
	case "op":
		return ErrCodeInvalidOp
	case "type", "field", "index":
		return ErrCodeInvalidType
	case "value", "kind":
		return ErrCodeInvalidValue
	case "args", "targets":
		return ErrCodeOperands
	case "name", "label":
		return ErrCodeNaming
	default:
		return ErrCodeGeneric
	}
}
