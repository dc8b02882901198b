package transformer

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

/*
TestTransformRows_Scenarios runs whole transformations over in-memory rows:
header row first, then one output row per input data row.
*/
func TestTransformRows_Scenarios(t *testing.T) {
	t.Parallel()

	oneRow := []Row{{"numbers", "n"}, {"one", "1"}}
	twoRows := []Row{{"numbers", "n"}, {"one", "1"}, {"two", "2"}}

	tests := []struct {
		name   string
		input  []Row
		script Script
		want   []Row
	}{
		{
			name:   "rename",
			input:  oneRow,
			script: Script{Rename("numbers", "letters")},
			want:   []Row{{"letters"}, {"one"}},
		},
		{
			name:   "create",
			input:  oneRow,
			script: Script{Create("foo")},
			want:   []Row{{"foo"}, {""}},
		},
		{
			name:   "map",
			input:  oneRow,
			script: Script{Map("numbers", "letters", Unary(upper))},
			want:   []Row{{"letters"}, {"ONE"}},
		},
		{
			name:   "map many",
			input:  oneRow,
			script: Script{MapColumns([]string{"numbers", "n"}, "amalgam", Binary(func(num, n string) string { return num + n }))},
			want:   []Row{{"amalgam"}, {"one1"}},
		},
		{
			name:   "two rows",
			input:  twoRows,
			script: Script{Create("foo"), Copy("numbers")},
			want:   []Row{{"foo", "numbers"}, {"", "one"}, {"", "two"}},
		},
		{
			name:   "noop",
			input:  oneRow,
			script: Script{},
			want:   []Row{{}, {}},
		},
		{
			name:   "header only",
			input:  []Row{{"numbers", "n"}},
			script: Script{Copy("numbers")},
			want:   []Row{{"numbers"}},
		},
		{
			name:   "empty input",
			input:  nil,
			script: Script{Create("foo"), Rename("a", "b")},
			want:   []Row{{"foo", "b"}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TransformRows(tt.input, tt.script)
			if err != nil {
				t.Fatalf("TransformRows: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("output mismatch:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}

/*
TestTransform_CopyAndRenameReadSameValue verifies that copy and rename of the
same column carry the same value and differ only in the header label.
*/
func TestTransform_CopyAndRenameReadSameValue(t *testing.T) {
	t.Parallel()

	got, err := TransformRows([]Row{{"numbers", "n"}, {"one", "1"}}, Script{Copy("numbers"), Rename("numbers", "anything")})
	if err != nil {
		t.Fatalf("TransformRows: %v", err)
	}
	want := []Row{{"numbers", "anything"}, {"one", "one"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

/*
TestTransform_PartialOutputOnError verifies that a failing row aborts the run
without retracting the header and rows already written.
*/
func TestTransform_PartialOutputOnError(t *testing.T) {
	t.Parallel()

	input := []Row{{"numbers", "n"}, {"one", "1"}, {"two"}}
	var sink SliceSink
	n, err := Transform(NewSliceSource(input...), &sink, Script{Copy("n")})
	if !errors.Is(err, ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
	var re *RowError
	if !errors.As(err, &re) || re.Row != 2 {
		t.Fatalf("expected failure on data row 2, got %v", err)
	}
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}
	want := []Row{{"n"}, {"1"}}
	if !reflect.DeepEqual(sink.Rows, want) {
		t.Fatalf("sink: got %v want %v", sink.Rows, want)
	}
}

/*
TestTransform_HeaderReadError verifies that a failing header read is reported
after the output header has been written.
*/
func TestTransform_HeaderReadError(t *testing.T) {
	t.Parallel()

	readErr := errors.New("bad header")
	var sink SliceSink
	_, err := Transform(SourceFunc(func() (Row, error) { return nil, readErr }), &sink, Script{Create("x")})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected %v, got %v", readErr, err)
	}
	if len(sink.Rows) != 1 {
		t.Fatalf("expected header only, got %v", sink.Rows)
	}
}

/*
TestOpen_EmptySource verifies that an engine opened over an empty source has
no column mapping and is exhausted.
*/
func TestOpen_EmptySource(t *testing.T) {
	t.Parallel()

	e, err := Open(NewSliceSource(), Script{Copy("x")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := e.Index("x"); ok {
		t.Fatalf("expected empty mapping")
	}
	if _, err := e.Advance(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
