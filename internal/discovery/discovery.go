package discovery

import (
	"uetp/internal/domain"

	log15 "gopkg.in/inconshreveable/log15.v2"
)

// Discovery scans, parses and filters test modules into suites
type Discovery struct {
	scanner *Scanner
	parser  *Parser
}

// NewDiscovery creates a new Discovery
func NewDiscovery(scanner *Scanner, parser *Parser) *Discovery {
	return &Discovery{scanner: scanner, parser: parser}
}

// Discover walks the category trees under root and returns the
// filtered suites keyed by suite name. A module that fails to load is
// logged and skipped; it never aborts the scan. Suites left with no
// units after filtering are dropped.
func (d *Discovery) Discover(root string, filter *Filter) (map[string]*domain.TestSuite, error) {
	files, err := d.scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	suites := make(map[string]*domain.TestSuite)
	for _, file := range files {
		if filter != nil && !filter.CategoryAllowed(file.Category) {
			continue
		}

		suite, err := d.parser.Parse(file)
		if err != nil {
			log15.Warn("skipping test module", "path", file.Path, "err", err)
			continue
		}

		if filter != nil {
			filter.PruneUnits(suite)
		}
		if len(suite.Units) == 0 {
			log15.Debug("suite has no units after filtering", "suite", suite.Name)
			continue
		}

		if _, exists := suites[suite.Name]; exists {
			log15.Warn("duplicate module name, keeping the first", "module", suite.Name, "path", file.Path)
			continue
		}
		suites[suite.Name] = suite
	}
	return suites, nil
}

// CountUnits totals the test units across a suite set
func CountUnits(suites map[string]*domain.TestSuite) int {
	total := 0
	for _, suite := range suites {
		total += len(suite.Units)
	}
	return total
}
