// Package persist implements the on-disk encoding for the vocabulary,
// association map, and observation log: plain whitespace/tab delimited
// text, written atomically via [osfs.AtomicWriter].
package persist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coriolis-dev/shdrift/internal/assoc"
	"github.com/coriolis-dev/shdrift/internal/obslog"
	"github.com/coriolis-dev/shdrift/internal/osfs"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

// Warner receives a non-fatal warning about a skipped or corrupt line,
// reported this way rather than aborting the load.
type Warner func(msg string)

// Paths names the three files that make up one persisted state.
type Paths struct {
	Vocab string
	Assoc string
	Obs   string
}

// Load reads the vocabulary, association, and observation files named by
// paths. A missing file is not an error: the corresponding component starts
// empty. A malformed line is skipped and reported to warn, not fatal.
func Load(fsys osfs.FS, paths Paths, warn Warner) (*vocab.Vocabulary, *obslog.Log, error) {
	if warn == nil {
		warn = func(string) {}
	}

	v := vocab.New()

	if err := loadVocab(fsys, paths.Vocab, v, warn); err != nil {
		return nil, nil, fmt.Errorf("load vocabulary: %w", err)
	}

	if err := loadAssoc(fsys, paths.Assoc, v, warn); err != nil {
		return nil, nil, fmt.Errorf("load associations: %w", err)
	}

	obs := obslog.New()
	if err := loadObs(fsys, paths.Obs, obs, warn); err != nil {
		return nil, nil, fmt.Errorf("load observations: %w", err)
	}

	return v, obs, nil
}

// Save writes the vocabulary, association map, and observation log to the
// files named by paths, creating parent directories as needed and writing
// each file atomically.
func Save(fsys osfs.FS, paths Paths, v *vocab.Vocabulary, obs *obslog.Log) error {
	w := osfs.NewAtomicWriter(fsys)

	if err := writeVocab(fsys, w, paths.Vocab, v); err != nil {
		return fmt.Errorf("save vocabulary: %w", err)
	}

	if err := writeAssoc(fsys, w, paths.Assoc, v); err != nil {
		return fmt.Errorf("save associations: %w", err)
	}

	if err := writeObs(fsys, w, paths.Obs, obs); err != nil {
		return fmt.Errorf("save observations: %w", err)
	}

	return nil
}

func loadVocab(fsys osfs.FS, path string, v *vocab.Vocabulary, warn Warner) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		token := scanner.Text()
		if token == "" {
			continue
		}

		v.Append(token)
	}

	return scanner.Err()
}

func loadAssoc(fsys osfs.FS, path string, v *vocab.Vocabulary, warn Warner) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	a := v.Assoc()
	numWords := v.NumWords()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 5 {
			warn(fmt.Sprintf("association line %d: expected 5 fields, got %d", lineNo, len(fields)))

			continue
		}

		key, value, ok := parseAssocFields(fields, numWords)
		if !ok {
			warn(fmt.Sprintf("association line %d: malformed or out-of-range entry", lineNo))

			continue
		}

		a.Add(key, value)
	}

	return scanner.Err()
}

func parseAssocFields(fields []string, numWords int) (assoc.Key, int, bool) {
	i, errI := strconv.Atoi(fields[0])
	pi, errPi := strconv.Atoi(fields[1])
	k, errK := strconv.Atoi(fields[2])
	pk, errPk := strconv.Atoi(fields[3])
	value, errV := strconv.Atoi(fields[4])

	if err := errors.Join(errI, errPi, errK, errPk, errV); err != nil {
		return assoc.Key{}, 0, false
	}

	if i < 0 || i >= numWords || k < 0 || k >= numWords {
		return assoc.Key{}, 0, false
	}

	return assoc.Key{WordI: i, PosI: pi, WordK: k, PosK: pk}, value, true
}

func loadObs(fsys osfs.FS, path string, obs *obslog.Log, warn Warner) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		line, ok := parseObsLine(text)
		if !ok {
			warn(fmt.Sprintf("observation line %d: missing terminator, skipped", lineNo))

			continue
		}

		obs.Append(line)
	}

	return scanner.Err()
}

func parseObsLine(text string) ([]int, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[len(fields)-1] != strconv.Itoa(vocab.Terminator) {
		return nil, false
	}

	line := make([]int, 0, len(fields)-1)

	for _, f := range fields[:len(fields)-1] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}

		line = append(line, n)
	}

	line = append(line, vocab.Terminator)

	return line, true
}

func writeVocab(fsys osfs.FS, w *osfs.AtomicWriter, path string, v *vocab.Vocabulary) error {
	if err := ensureParentDir(fsys, path); err != nil {
		return err
	}

	var buf bytes.Buffer

	n := v.NumWords()
	for i := range n {
		buf.WriteString(v.Word(i))
		buf.WriteByte('\n')
	}

	return w.WriteWithDefaults(path, &buf)
}

func writeAssoc(fsys osfs.FS, w *osfs.AtomicWriter, path string, v *vocab.Vocabulary) error {
	if err := ensureParentDir(fsys, path); err != nil {
		return err
	}

	var buf bytes.Buffer

	v.Assoc().Iterate(func(key assoc.Key, value int) {
		fmt.Fprintf(&buf, "%d\t%d\t%d\t%d\t%d\n", key.WordI, key.PosI, key.WordK, key.PosK, value)
	})

	return w.WriteWithDefaults(path, &buf)
}

func writeObs(fsys osfs.FS, w *osfs.AtomicWriter, path string, obs *obslog.Log) error {
	if err := ensureParentDir(fsys, path); err != nil {
		return err
	}

	var buf bytes.Buffer

	obs.Lock()
	obs.EachLocked(func(line []int) {
		for _, idx := range line {
			fmt.Fprintf(&buf, "%d ", idx)
		}

		buf.WriteByte('\n')
	})
	obs.Unlock()

	return w.WriteWithDefaults(path, &buf)
}

func ensureParentDir(fsys osfs.FS, path string) error {
	dir := dirOf(path)
	if dir == "" || dir == "." {
		return nil
	}

	return fsys.MkdirAll(dir, 0o755)
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}

	return path[:idx]
}
