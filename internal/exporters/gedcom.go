package exporters

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arkivist/heritage/internal/entities"
	"github.com/arkivist/heritage/internal/gedcom"
)

// GedcomExporter renders one tree's relational records back into GEDCOM
// text. The relational store is the identifier source of truth, so it is
// the only store the exporter reads.
//
// Output is sanitized by construction: no extension tags, normalized dates
// (they were normalized on import), xrefs as originally assigned.
type GedcomExporter struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGedcomExporter(db *gorm.DB, log *logrus.Logger) *GedcomExporter {
	return &GedcomExporter{db: db, log: log}
}

// submitterXref identifies the generated submitter record the header points
// at. GEDCOM 5.5.1 requires one per file.
const submitterXref = "SUB1"

// Export writes the whole tree: header, submitter, individuals, families,
// sources, notes, media, trailer. Records are ordered by xref.
func (e *GedcomExporter) Export(ctx context.Context, treeID uint) (string, error) {
	var tree entities.Tree
	if err := e.db.WithContext(ctx).First(&tree, treeID).Error; err != nil {
		return "", fmt.Errorf("tree %d not found: %w", treeID, err)
	}

	w := gedcom.NewWriter()
	w.Line(0, gedcom.TagHeader, "")
	w.Line(1, "SOUR", "heritage")
	w.Line(1, gedcom.TagDate, gedcom.FormatDate(time.Now()))
	w.Line(1, gedcom.TagSubmitter, "@"+submitterXref+"@")
	w.Line(1, "GEDC", "")
	w.Line(2, "VERS", "5.5.1")
	w.Line(1, "CHAR", "UTF-8")

	w.RecordLine(submitterXref, gedcom.TagSubmitter)
	w.Line(1, gedcom.TagName, "heritage")

	xrefByID, err := e.writeIndividuals(ctx, w, treeID)
	if err != nil {
		return "", err
	}
	if err := e.writeFamilies(ctx, w, treeID, xrefByID); err != nil {
		return "", err
	}
	if err := e.writeSources(ctx, w, treeID); err != nil {
		return "", err
	}
	if err := e.writeNotes(ctx, w, treeID); err != nil {
		return "", err
	}
	if err := e.writeMedia(ctx, w, treeID); err != nil {
		return "", err
	}

	w.Line(0, gedcom.TagTrailer, "")

	e.log.WithFields(logrus.Fields{"tree_id": treeID, "tree": tree.Name}).
		Info("tree exported")
	return w.String(), nil
}

func (e *GedcomExporter) writeIndividuals(ctx context.Context, w *gedcom.Writer, treeID uint) (map[uint]string, error) {
	var individuals []entities.Individual
	err := e.db.WithContext(ctx).
		Where("tree_id = ?", treeID).Order("xref").Find(&individuals).Error
	if err != nil {
		return nil, fmt.Errorf("load individuals: %w", err)
	}

	xrefByID := make(map[uint]string, len(individuals))
	for _, ind := range individuals {
		xrefByID[ind.ID] = ind.Xref
		w.RecordLine(ind.Xref, string(gedcom.RecordIndividual))
		if name := gedcom.JoinName(ind.GivenName, ind.Surname); name != "" {
			w.Line(1, gedcom.TagName, name)
		}
		if ind.Sex != entities.SexUnknown {
			w.Line(1, gedcom.TagSex, string(ind.Sex))
		}
		writeEvent(w, gedcom.TagBirth, ind.BirthDateRaw, ind.BirthPlace, "")
		writeEvent(w, gedcom.TagDeath, ind.DeathDateRaw, ind.DeathPlace, ind.DeathCause)
		writeEvent(w, gedcom.TagBurial, "", ind.BurialPlace, "")
		if ind.Occupation != "" {
			w.Line(1, gedcom.TagOccupation, ind.Occupation)
		}
	}
	return xrefByID, nil
}

func (e *GedcomExporter) writeFamilies(ctx context.Context, w *gedcom.Writer, treeID uint, xrefByID map[uint]string) error {
	var families []entities.Family
	err := e.db.WithContext(ctx).
		Where("tree_id = ?", treeID).Order("xref").
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Find(&families).Error
	if err != nil {
		return fmt.Errorf("load families: %w", err)
	}

	for _, fam := range families {
		w.RecordLine(fam.Xref, string(gedcom.RecordFamily))
		e.writeSpouse(w, gedcom.TagHusband, fam.HusbandID, xrefByID, fam.Xref)
		e.writeSpouse(w, gedcom.TagWife, fam.WifeID, xrefByID, fam.Xref)
		for _, child := range fam.Children {
			xref, ok := xrefByID[child.IndividualID]
			if !ok {
				e.log.WithFields(logrus.Fields{"family": fam.Xref, "individual_id": child.IndividualID}).
					Warn("child not in tree, link skipped")
				continue
			}
			w.Line(1, gedcom.TagChild, "@"+xref+"@")
		}
		writeEvent(w, gedcom.TagMarriage, fam.MarriageDateRaw, fam.MarriagePlace, "")
		writeEvent(w, gedcom.TagDivorce, fam.DivorceDateRaw, fam.DivorcePlace, "")
	}
	return nil
}

func (e *GedcomExporter) writeSpouse(w *gedcom.Writer, tag string, id *uint, xrefByID map[uint]string, famXref string) {
	if id == nil {
		return
	}
	xref, ok := xrefByID[*id]
	if !ok {
		e.log.WithFields(logrus.Fields{"family": famXref, "individual_id": *id}).
			Warn("spouse not in tree, link skipped")
		return
	}
	w.Line(1, tag, "@"+xref+"@")
}

func (e *GedcomExporter) writeSources(ctx context.Context, w *gedcom.Writer, treeID uint) error {
	var sources []entities.SourceRecord
	err := e.db.WithContext(ctx).
		Where("tree_id = ?", treeID).Order("xref").Find(&sources).Error
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	for _, src := range sources {
		w.RecordLine(src.Xref, string(gedcom.RecordSource))
		if src.Title != "" {
			w.Line(1, gedcom.TagTitle, src.Title)
		}
		if src.Author != "" {
			w.Line(1, gedcom.TagAuthor, src.Author)
		}
		if src.Publication != "" {
			w.Line(1, gedcom.TagPublication, src.Publication)
		}
		if src.Repository != "" {
			w.Line(1, gedcom.TagRepository, src.Repository)
		}
	}
	return nil
}

func (e *GedcomExporter) writeNotes(ctx context.Context, w *gedcom.Writer, treeID uint) error {
	var notes []entities.NoteRecord
	err := e.db.WithContext(ctx).
		Where("tree_id = ?", treeID).Order("xref").Find(&notes).Error
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	for _, note := range notes {
		w.NoteRecord(note.Xref, note.Text)
	}
	return nil
}

func (e *GedcomExporter) writeMedia(ctx context.Context, w *gedcom.Writer, treeID uint) error {
	var media []entities.MediaObject
	err := e.db.WithContext(ctx).
		Where("tree_id = ?", treeID).Order("xref").Find(&media).Error
	if err != nil {
		return fmt.Errorf("load media: %w", err)
	}
	for _, obj := range media {
		w.RecordLine(obj.Xref, string(gedcom.RecordMedia))
		if obj.FilePath != "" {
			w.Line(1, gedcom.TagFile, obj.FilePath)
		}
		if obj.Format != "" {
			w.Line(1, gedcom.TagFormat, obj.Format)
		}
		if obj.Title != "" {
			w.Line(1, gedcom.TagTitle, obj.Title)
		}
	}
	return nil
}

func writeEvent(w *gedcom.Writer, tag, date, place, cause string) {
	if date == "" && place == "" && cause == "" {
		return
	}
	w.Line(1, tag, "")
	if date != "" {
		w.Line(2, gedcom.TagDate, date)
	}
	if place != "" {
		w.Line(2, gedcom.TagPlace, place)
	}
	if cause != "" {
		w.Line(2, gedcom.TagCause, cause)
	}
}
