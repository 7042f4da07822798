package exportoptions

import (
	"strconv"

	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
)

// Backfill records the export fields that synthesis resolved for a
// configuration whose corresponding fields were unset. A nil field means
// nothing to backfill.
type Backfill struct {
	ExportMethod   *string
	IncludeSymbols *bool
	IncludeBitcode *bool
	ExportTeamID   *string
}

// Empty reports whether the backfill would change nothing.
func (b Backfill) Empty() bool {
	return b.ExportMethod == nil && b.IncludeSymbols == nil && b.IncludeBitcode == nil && b.ExportTeamID == nil
}

// Apply writes the backfilled values into cfg. Fields already set on cfg are
// never overwritten, so applying twice is a no-op.
func (b Backfill) Apply(cfg *config.Config) {
	if b.ExportMethod != nil && cfg.ExportMethod == "" {
		cfg.ExportMethod = *b.ExportMethod
	}
	if b.IncludeSymbols != nil && cfg.IncludeSymbols == nil {
		cfg.IncludeSymbols = config.Bool(*b.IncludeSymbols)
	}
	if b.IncludeBitcode != nil && cfg.IncludeBitcode == nil {
		cfg.IncludeBitcode = config.Bool(*b.IncludeBitcode)
	}
	if b.ExportTeamID != nil && cfg.ExportTeamID == "" {
		cfg.ExportTeamID = *b.ExportTeamID
	}
}

// Synthesize builds the export document for cfg without mutating it. The
// returned Backfill describes which unset configuration fields downstream
// consumers should see filled in; call Backfill.Apply to commit them.
func Synthesize(cfg *config.Config) (Document, Backfill, error) {
	base, err := userDocument(cfg.ExportOptions)
	if err != nil {
		return nil, Backfill{}, err
	}

	var bf Backfill
	method := cfg.ExportMethod
	symbols := cfg.IncludeSymbols
	bitcode := cfg.IncludeBitcode
	teamID := cfg.ExportTeamID

	if base == nil {
		base = Document{}
		if method == "" {
			method = DefaultMethod
			bf.ExportMethod = &method
		}
		if symbols == nil {
			symbols = config.Bool(DefaultIncludeSymbols)
			bf.IncludeSymbols = symbols
		}
		if bitcode == nil {
			bitcode = config.Bool(DefaultIncludeBitcode)
			bf.IncludeBitcode = bitcode
		}
	} else {
		if method == "" {
			method = base.String(MethodKey)
			if method == "" {
				method = DefaultMethod
			}
			bf.ExportMethod = &method
		}
		if symbols == nil {
			if v, ok := boolValue(base[UploadSymbolsKey]); ok {
				symbols = config.Bool(v)
				bf.IncludeSymbols = symbols
			}
		}
		if bitcode == nil {
			if v, ok := boolValue(base[UploadBitcodeKey]); ok {
				bitcode = config.Bool(v)
				bf.IncludeBitcode = bitcode
			}
		}
		if teamID == "" {
			if v := base.String(TeamIDKey); v != "" {
				teamID = v
				bf.ExportTeamID = &teamID
			}
		}
	}

	doc := base
	doc[MethodKey] = method
	if method == MethodAppStore {
		if symbols != nil {
			doc[UploadSymbolsKey] = *symbols
		}
		if bitcode != nil {
			doc[UploadBitcodeKey] = *bitcode
		}
	} else {
		delete(doc, UploadSymbolsKey)
		delete(doc, UploadBitcodeKey)
	}
	if teamID != "" {
		doc[TeamIDKey] = teamID
	}

	return doc, bf, nil
}

// SynthesizeAndBackfill runs Synthesize and applies the backfill to cfg.
func SynthesizeAndBackfill(cfg *config.Config) (Document, error) {
	doc, bf, err := Synthesize(cfg)
	if err != nil {
		return nil, err
	}
	bf.Apply(cfg)
	return doc, nil
}

// userDocument returns a normalized private copy of the user's export
// options, or nil when none were supplied.
func userDocument(opts config.ExportOptions) (Document, error) {
	switch {
	case opts.Inline != nil:
		return normalize(Document(opts.Inline).Clone()), nil
	case opts.Path != "":
		doc, err := ReadFile(opts.Path)
		if err != nil {
			return nil, derrors.MalformedExportOptions(opts.Path, err)
		}
		return normalize(doc.Clone()), nil
	default:
		return nil, nil
	}
}

func boolValue(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	default:
		return false, false
	}
}
