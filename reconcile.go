package servicemonitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// configSeparator splits the fields of a services config line.
const configSeparator = "|"

// ServiceSpec is one validated line of a services config.
type ServiceSpec struct {
	Identifier Kind
	Name       string
	URL        string

	// Line is the 1-based line number the spec came from.
	Line int
}

// ParseConfig validates services config lines of the form
// identifier|name|url and returns them in order.
//
// Blank lines and lines starting with '#' are skipped but still count
// towards line numbers. Fields are trimmed. The first problem found is
// returned as a *[BadConfigError], *[UnrecognizedKindError],
// *[DuplicateServiceError] or *[DuplicateNameError].
func ParseConfig(lines []string) ([]ServiceSpec, error) {
	specs := make([]ServiceSpec, 0, len(lines))
	firstSeen := make(map[Kind]int, len(lines))
	nameSeen := make(map[string]int, len(lines))

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, configSeparator)
		if len(fields) != 3 {
			return nil, &BadConfigError{Line: lineNo}
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		if fields[0] == "" || fields[1] == "" || fields[2] == "" {
			return nil, &BadConfigError{Line: lineNo}
		}

		kind, err := ParseKind(fields[0])
		if err != nil {
			var uerr *UnrecognizedKindError
			if errors.As(err, &uerr) {
				uerr.Line = lineNo
			}
			return nil, err
		}

		if first, dup := firstSeen[kind]; dup {
			return nil, &DuplicateServiceError{Identifier: kind, Line: lineNo, FirstLine: first}
		}
		firstSeen[kind] = lineNo

		if first, dup := nameSeen[fields[1]]; dup {
			return nil, &DuplicateNameError{Name: fields[1], Line: lineNo, FirstLine: first}
		}
		nameSeen[fields[1]] = lineNo

		specs = append(specs, ServiceSpec{
			Identifier: kind,
			Name:       fields[1],
			URL:        fields[2],
			Line:       lineNo,
		})
	}

	return specs, nil
}

// ReadConfig reads services config lines from r and validates them with
// [ParseConfig].
func ReadConfig(r io.Reader) ([]ServiceSpec, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(lines)
}

// Reconcile brings the live service set in line with config lines.
//
// New identifiers are created, known ones have their name and URL updated
// in place, and services missing from the config are removed. The resulting
// order is the config order. History is untouched and nothing is persisted.
//
// Reconcile is all-or-nothing: the whole config is validated first, and on
// any error the live services are left exactly as they were.
func (r *Registry) Reconcile(lines []string) error {
	specs, err := ParseConfig(lines)
	if err != nil {
		return err
	}
	r.apply(specs)
	return nil
}

// ReconcileReader reads config lines from rd and calls [Registry.Reconcile].
func (r *Registry) ReconcileReader(rd io.Reader) error {
	specs, err := ReadConfig(rd)
	if err != nil {
		return err
	}
	r.apply(specs)
	return nil
}

// ReconcileFile reads the services config at path and calls
// [Registry.Reconcile].
func (r *Registry) ReconcileFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open services config: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.ReconcileReader(f)
}

// apply replaces the service set with specs, reusing live services.
func (r *Registry) apply(specs []ServiceSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]*Service, 0, len(specs))
	kept := make(map[Kind]bool, len(specs))

	for _, spec := range specs {
		kept[spec.Identifier] = true

		if s := r.lookup(spec.Identifier); s != nil {
			if s.name != spec.Name || s.url != spec.URL {
				r.logger.Info("service updated",
					"service", string(spec.Identifier),
					"name", spec.Name,
					"url", spec.URL,
				)
				s.name = spec.Name
				s.url = spec.URL
			}
			next = append(next, s)
			continue
		}

		r.logger.Info("service added",
			"service", string(spec.Identifier),
			"name", spec.Name,
			"url", spec.URL,
		)
		next = append(next, &Service{kind: spec.Identifier, name: spec.Name, url: spec.URL})
	}

	for _, s := range r.services {
		if !kept[s.kind] {
			r.logger.Info("service removed", "service", string(s.kind))
		}
	}

	r.services = next
}
