package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/datamartlab/logmart/internal/logrec"
)

// Load reads a rule set from a directory of CUE files.
//
// Uses the CUE SDK's Go API directly (not a CLI subprocess). All files in
// the directory are unified into one instance, so classification and
// interest rules may be split across files. The decoded set is validated
// before being returned.
func Load(dir string) (Set, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return Set{}, fmt.Errorf("rules directory not found: %s", dir)
	}
	if err != nil {
		return Set{}, fmt.Errorf("access rules directory: %w", err)
	}
	if !info.IsDir() {
		return Set{}, fmt.Errorf("not a directory: %s", dir)
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return Set{}, fmt.Errorf("scan rules directory: %w", err)
	}
	if len(cueFiles) == 0 {
		return Set{}, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return Set{}, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return Set{}, fmt.Errorf("load rule files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return Set{}, fmt.Errorf("build rule files: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Set{}, fmt.Errorf("validate rule files: %w", err)
	}

	set, err := decodeSet(value)
	if err != nil {
		return Set{}, err
	}
	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("invalid rule set: %w", err)
	}
	return set, nil
}

// findCUEFiles returns non-hidden .cue files directly under dir.
func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".cue" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// rawRule matches the CUE shape of one interest rule.
type rawRule struct {
	Table    string   `json:"table"`
	Op       string   `json:"op"`
	Field    string   `json:"field,omitempty"`
	Entity   string   `json:"entity"`
	Required []string `json:"required,omitempty"`
}

func decodeSet(v cue.Value) (Set, error) {
	set := Set{Fields: map[string]Class{}}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		iter, err := fieldsVal.Fields()
		if err != nil {
			return Set{}, fmt.Errorf("fields table: %w", err)
		}
		for iter.Next() {
			name := iter.Label()
			classStr, err := iter.Value().String()
			if err != nil {
				return Set{}, fmt.Errorf("fields.%s: %w", name, err)
			}
			class, err := ParseClass(classStr)
			if err != nil {
				return Set{}, fmt.Errorf("fields.%s: %w", name, err)
			}
			set.Fields[logrec.FieldKey(name)] = class
		}
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return Set{}, fmt.Errorf("rule files declare no \"rules\" list")
	}
	iter, err := rulesVal.List()
	if err != nil {
		return Set{}, fmt.Errorf("rules list: %w", err)
	}
	for i := 0; iter.Next(); i++ {
		var raw rawRule
		if err := iter.Value().Decode(&raw); err != nil {
			return Set{}, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rule, err := raw.toRule()
		if err != nil {
			return Set{}, fmt.Errorf("rules[%d]: %w", i, err)
		}
		set.Rules = append(set.Rules, rule)
	}

	return set, nil
}

func (r rawRule) toRule() (Rule, error) {
	op, err := logrec.ParseOperation(r.Op)
	if err != nil {
		return Rule{}, err
	}
	entity, err := ParseEntity(r.Entity)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Table:    r.Table,
		Op:       op,
		Field:    r.Field,
		Entity:   entity,
		Required: r.Required,
	}, nil
}
