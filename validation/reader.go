// Package validation replays a recorded address stream through the
// translator and scores every access against the oracle file produced
// alongside it.
package validation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// An AddressReader streams logical addresses from a newline delimited file
// of decimal values. Exhaustion of the file surfaces as io.EOF and ends the
// run; a malformed line is fatal.
type AddressReader struct {
	file       *os.File
	scanner    *bufio.Scanner
	lineNumber uint64
}

// NewAddressReader opens the address file for streaming.
func NewAddressReader(path string) (*AddressReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening address file: %w", err)
	}

	return &AddressReader{
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

// Next returns the next logical address, or io.EOF once the file is
// exhausted.
func (r *AddressReader) Next() (uint64, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return 0, fmt.Errorf("reading address file: %w", err)
		}

		return 0, io.EOF
	}

	r.lineNumber++

	addr, err := strconv.ParseUint(strings.TrimSpace(r.scanner.Text()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("address file line %d: %w", r.lineNumber, err)
	}

	return addr, nil
}

// LineNumber returns the number of lines consumed so far.
func (r *AddressReader) LineNumber() uint64 {
	return r.lineNumber
}

func (r *AddressReader) Close() error {
	return r.file.Close()
}

// An OracleEntry is one expected access outcome from the oracle file. The
// physical address is advisory: frame placement depends on the replacement
// history, so only the virtual address and the byte value decide a match.
type OracleEntry struct {
	Virtual  uint64
	Physical uint64
	Value    int8
}

func (e OracleEntry) String() string {
	return fmt.Sprintf("virtual address: %d\tphysical address: %d\tvalue: %d",
		e.Virtual, e.Physical, e.Value)
}

// An OracleReader streams expected outcomes from the oracle file. Each line
// reads "Virtual address: V Physical address: P Value: B".
type OracleReader struct {
	file       *os.File
	scanner    *bufio.Scanner
	lineNumber uint64
}

// NewOracleReader opens the oracle file for streaming.
func NewOracleReader(path string) (*OracleReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening oracle file: %w", err)
	}

	return &OracleReader{
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

// Next returns the next expected outcome, or io.EOF once the file is
// exhausted.
func (r *OracleReader) Next() (OracleEntry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return OracleEntry{}, fmt.Errorf("reading oracle file: %w", err)
		}

		return OracleEntry{}, io.EOF
	}

	r.lineNumber++

	fields := strings.Split(strings.TrimSpace(r.scanner.Text()), " ")
	if len(fields) < 8 {
		return OracleEntry{}, fmt.Errorf("oracle file line %d: malformed entry %q",
			r.lineNumber, r.scanner.Text())
	}

	virtual, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return OracleEntry{}, fmt.Errorf("oracle file line %d: %w", r.lineNumber, err)
	}

	physical, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return OracleEntry{}, fmt.Errorf("oracle file line %d: %w", r.lineNumber, err)
	}

	value, err := strconv.ParseInt(fields[7], 10, 8)
	if err != nil {
		return OracleEntry{}, fmt.Errorf("oracle file line %d: %w", r.lineNumber, err)
	}

	return OracleEntry{
		Virtual:  virtual,
		Physical: physical,
		Value:    int8(value),
	}, nil
}

// LineNumber returns the number of lines consumed so far.
func (r *OracleReader) LineNumber() uint64 {
	return r.lineNumber
}

func (r *OracleReader) Close() error {
	return r.file.Close()
}

// CountLines returns the number of lines in a file. The harness progress
// display uses it to size the run before streaming begins.
func CountLines(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var count uint64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		count++
	}

	if err := scanner.Err(); err != nil {
		return 0, err
	}

	return count, nil
}
