package loader

import (
	"context"
	"errors"
	"fmt"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Parquet-specific errors
var (
	ErrEmptyParquet   = errors.New("empty Parquet file")
	ErrInvalidParquet = errors.New("invalid Parquet format")
)

// WordColumn is the preferred column name for programs stored as Parquet.
// Without it, the first column is used.
const WordColumn = "word"

// LoadParquet reads a program stored one word per row in a Parquet file.
// Uses the dataframe-go imports package with parquet-go backend.
func LoadParquet(path string) (vm.Program, error) {
	// Open the parquet file using local file reader
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	ctx := context.Background()

	df, err := imports.LoadFromParquet(ctx, fr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParquet, err)
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyParquet
	}

	return FromFrame(df)
}

// FromFrame extracts a program from the word column of a DataFrame.
// Nil and non-integer cells are load errors.
func FromFrame(df *dataframe.DataFrame) (vm.Program, error) {
	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyParquet
	}

	col := df.Series[0]
	if idx, err := df.NameToColumn(WordColumn); err == nil {
		col = df.Series[idx]
	}

	n := col.NRows()
	if n == 0 {
		return nil, ErrEmptyParquet
	}

	program := make(vm.Program, n)
	for i := 0; i < n; i++ {
		switch v := col.Value(i).(type) {
		case int64:
			program[i] = v
		case int32:
			program[i] = int64(v)
		case int:
			program[i] = int64(v)
		case nil:
			return nil, &LoadError{Index: i, Token: "null", Err: ErrMalformedToken}
		default:
			return nil, &LoadError{Index: i, Token: fmt.Sprint(v), Err: ErrMalformedToken}
		}
	}
	return program, nil
}
