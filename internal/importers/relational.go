package importers

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arkivist/heritage/internal/entities"
	"github.com/arkivist/heritage/internal/gedcom"
	"github.com/arkivist/heritage/internal/resolver"
)

// RelationalImporter persists parsed records into the relational store and
// feeds the resolver: immediately after each insert it writes (xref → newID),
// which is what lets the family, document and graph steps resolve references.
//
// A failure on one record is logged with its xref and reported as an
// ErrorRecord; counts reflect actual successes. Failure granularity is owned
// by the caller: the standard strategy runs one long transaction and aborts
// it on the first reported failure, the optimized strategy runs one
// transaction per batch and keeps going past failed records.
type RelationalImporter struct {
	log *logrus.Logger
}

func NewRelationalImporter(log *logrus.Logger) *RelationalImporter {
	return &RelationalImporter{log: log}
}

// SortedRecords returns map values ordered by xref so batch slicing and
// inserts are deterministic.
func SortedRecords(records map[string]*gedcom.Record) []*gedcom.Record {
	xrefs := make([]string, 0, len(records))
	for xref := range records {
		xrefs = append(xrefs, xref)
	}
	sort.Strings(xrefs)
	out := make([]*gedcom.Record, 0, len(records))
	for _, xref := range xrefs {
		out = append(out, records[xref])
	}
	return out
}

func (ri *RelationalImporter) ImportIndividuals(ctx context.Context, tx *gorm.DB, records []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord) {
	count := 0
	var errs []ErrorRecord
	for _, rec := range records {
		birth := rec.Event(gedcom.TagBirth)
		death := rec.Event(gedcom.TagDeath)

		individual := entities.Individual{
			TreeID:       treeID,
			Xref:         rec.Xref,
			GivenName:    rec.Fields[gedcom.TagGivenName],
			Surname:      rec.Fields[gedcom.TagSurname],
			Sex:          normalizeSex(rec.Fields[gedcom.TagSex]),
			BirthDateRaw: birth.Date,
			BirthYear:    gedcom.YearOf(birth.Date),
			BirthPlace:   birth.Place,
			DeathDateRaw: death.Date,
			DeathYear:    gedcom.YearOf(death.Date),
			DeathPlace:   death.Place,
			DeathCause:   death.Cause,
			BurialPlace:  rec.Event(gedcom.TagBurial).Place,
			Occupation:   rec.Fields[gedcom.TagOccupation],
		}
		if t, ok := gedcom.ResolveDate(birth.Date); ok {
			individual.BirthDate = &t
		}
		if t, ok := gedcom.ResolveDate(death.Date); ok {
			individual.DeathDate = &t
		}

		if err := tx.Create(&individual).Error; err != nil {
			errs = append(errs, ri.skip("individual", rec.Xref, err))
			continue
		}
		if err := res.Put(ctx, rec.Xref, individual.ID); err != nil {
			errs = append(errs, ri.skip("individual", rec.Xref, err))
			continue
		}
		count++
	}
	return count, errs
}

func (ri *RelationalImporter) ImportFamilies(ctx context.Context, tx *gorm.DB, records []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord) {
	count := 0
	var errs []ErrorRecord
	for _, rec := range records {
		marriage := rec.Event(gedcom.TagMarriage)
		divorce := rec.Event(gedcom.TagDivorce)

		family := entities.Family{
			TreeID:          treeID,
			Xref:            rec.Xref,
			MarriageDateRaw: marriage.Date,
			MarriageYear:    gedcom.YearOf(marriage.Date),
			MarriagePlace:   marriage.Place,
			DivorceDateRaw:  divorce.Date,
			DivorceYear:     gedcom.YearOf(divorce.Date),
			DivorcePlace:    divorce.Place,
		}
		if t, ok := gedcom.ResolveDate(marriage.Date); ok {
			family.MarriageDate = &t
		}
		if t, ok := gedcom.ResolveDate(divorce.Date); ok {
			family.DivorceDate = &t
		}

		// Unresolved spouse xrefs leave the column NULL; the rest of the
		// family's fields are still persisted.
		family.HusbandID = ri.resolveRef(ctx, res, rec, gedcom.TagHusband)
		family.WifeID = ri.resolveRef(ctx, res, rec, gedcom.TagWife)

		if err := tx.Create(&family).Error; err != nil {
			errs = append(errs, ri.skip("family", rec.Xref, err))
			continue
		}

		for position, childXref := range rec.Refs[gedcom.TagChild] {
			childID, ok := res.Get(ctx, childXref)
			if !ok {
				ri.log.WithFields(logrus.Fields{"family": rec.Xref, "child": childXref}).
					Warn("child xref unresolved, link skipped")
				continue
			}
			link := entities.FamilyChild{FamilyID: family.ID, IndividualID: childID, Position: position}
			if err := tx.Create(&link).Error; err != nil {
				errs = append(errs, ri.skip("family_child", childXref, err))
			}
		}

		if err := res.Put(ctx, rec.Xref, family.ID); err != nil {
			errs = append(errs, ri.skip("family", rec.Xref, err))
			continue
		}
		count++
	}
	return count, errs
}

func (ri *RelationalImporter) ImportSources(ctx context.Context, tx *gorm.DB, records []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord) {
	count := 0
	var errs []ErrorRecord
	for _, rec := range records {
		source := entities.SourceRecord{
			TreeID:      treeID,
			Xref:        rec.Xref,
			Title:       rec.Fields[gedcom.TagTitle],
			Author:      rec.Fields[gedcom.TagAuthor],
			Publication: rec.Fields[gedcom.TagPublication],
			Repository:  rec.Fields[gedcom.TagRepository],
		}
		if err := tx.Create(&source).Error; err != nil {
			errs = append(errs, ri.skip("source", rec.Xref, err))
			continue
		}
		if err := res.Put(ctx, rec.Xref, source.ID); err != nil {
			errs = append(errs, ri.skip("source", rec.Xref, err))
			continue
		}
		count++
	}
	return count, errs
}

func (ri *RelationalImporter) ImportNotes(ctx context.Context, tx *gorm.DB, records []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord) {
	count := 0
	var errs []ErrorRecord
	for _, rec := range records {
		note := entities.NoteRecord{TreeID: treeID, Xref: rec.Xref, Text: rec.Fields["TEXT"]}
		if err := tx.Create(&note).Error; err != nil {
			errs = append(errs, ri.skip("note", rec.Xref, err))
			continue
		}
		if err := res.Put(ctx, rec.Xref, note.ID); err != nil {
			errs = append(errs, ri.skip("note", rec.Xref, err))
			continue
		}
		count++
	}
	return count, errs
}

func (ri *RelationalImporter) ImportMedia(ctx context.Context, tx *gorm.DB, records []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord) {
	count := 0
	var errs []ErrorRecord
	for _, rec := range records {
		media := entities.MediaObject{
			TreeID:   treeID,
			Xref:     rec.Xref,
			FilePath: rec.Fields[gedcom.TagFile],
			Format:   rec.Fields[gedcom.TagFormat],
			Title:    rec.Fields[gedcom.TagTitle],
		}
		if err := tx.Create(&media).Error; err != nil {
			errs = append(errs, ri.skip("media", rec.Xref, err))
			continue
		}
		if err := res.Put(ctx, rec.Xref, media.ID); err != nil {
			errs = append(errs, ri.skip("media", rec.Xref, err))
			continue
		}
		count++
	}
	return count, errs
}

func (ri *RelationalImporter) resolveRef(ctx context.Context, res resolver.Resolver, rec *gedcom.Record, tag string) *uint {
	refs := rec.Refs[tag]
	if len(refs) == 0 {
		return nil
	}
	id, ok := res.Get(ctx, refs[0])
	if !ok {
		ri.log.WithFields(logrus.Fields{"family": rec.Xref, "ref": refs[0], "tag": tag}).
			Warn("spouse xref unresolved, relationship skipped")
		return nil
	}
	return &id
}

func (ri *RelationalImporter) skip(kind, xref string, err error) ErrorRecord {
	ri.log.WithFields(logrus.Fields{"kind": kind, "xref": xref}).
		WithError(err).Warn("record skipped")
	return ErrorRecord{Stage: StoreRelational + "/" + kind, Xref: xref, Message: err.Error()}
}

func normalizeSex(value string) entities.Sex {
	switch value {
	case "M", "m":
		return entities.SexMale
	case "F", "f":
		return entities.SexFemale
	}
	return entities.SexUnknown
}
