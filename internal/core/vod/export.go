package vod

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "VODs"

var exportHeaders = []string{
	"Title", "URL", "Release Year", "Duration (min)", "Rating", "Views",
	"Genre", "Country", "Director", "Actors", "Age Rating", "Access", "Quality",
}

// ExportXLSX renders the whole catalog as a spreadsheet, read fresh from the store.
func (s *Service) ExportXLSX(ctx context.Context) (*bytes.Buffer, error) {
	vods, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return renderXLSX(vods)
}

func renderXLSX(vods []Vod) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for r, v := range vods {
		row := r + 2
		write := func(col int, val interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, val)
		}
		write(1, v.Title)
		write(2, v.URL)
		write(3, derefOr(v.ReleaseYear))
		write(4, derefOr(v.Duration))
		write(5, derefOr(v.Rating))
		write(6, derefOr(v.ViewCount))
		write(7, strings.Join(v.Genre, ", "))
		write(8, derefOr(v.Country))
		write(9, derefOr(v.Director))
		write(10, strings.Join(v.Actors, ", "))
		write(11, derefOr(v.AgeRating))
		write(12, derefOr(v.AccessType))
		write(13, derefOr(v.VideoQuality))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf, nil
}

// derefOr returns the pointed-to value, or an empty cell for nil.
func derefOr[T any](p *T) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
