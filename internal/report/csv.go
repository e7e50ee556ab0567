package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"CandleAlert/internal/model"

	"github.com/gocarina/gocsv"
)

// indicatorRowDTO is the CSV shape of an IndicatorRow. Undefined values are empty cells.
type indicatorRowDTO struct {
	Time      string `csv:"time"`
	Open      string `csv:"open"`
	High      string `csv:"high"`
	Low       string `csv:"low"`
	Close     string `csv:"close"`
	Volume    string `csv:"volume"`
	MA20      string `csv:"ma20"`
	MA50      string `csv:"ma50"`
	MA200     string `csv:"ma200"`
	AvgVolume string `csv:"avg_volume"`
	K         string `csv:"k"`
	D         string `csv:"d"`
	RSI       string `csv:"rsi"`
	RSIK      string `csv:"rsi_k"`
	RSID      string `csv:"rsi_d"`
}

func cell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toDTO(rows []model.IndicatorRow) []*indicatorRowDTO {
	out := make([]*indicatorRowDTO, len(rows))
	for i, r := range rows {
		out[i] = &indicatorRowDTO{
			Time:      r.Time.UTC().Format(time.RFC3339),
			Open:      cell(r.Open),
			High:      cell(r.High),
			Low:       cell(r.Low),
			Close:     cell(r.Close),
			Volume:    cell(r.Volume),
			MA20:      cell(r.MA20),
			MA50:      cell(r.MA50),
			MA200:     cell(r.MA200),
			AvgVolume: cell(r.AvgVolume),
			K:         cell(r.K),
			D:         cell(r.D),
			RSI:       cell(r.RSI),
			RSIK:      cell(r.RSIK),
			RSID:      cell(r.RSID),
		}
	}
	return out
}

// WriteCSV writes the indicator table with a header row.
func WriteCSV(w io.Writer, rows []model.IndicatorRow) error {
	dtos := toDTO(rows)
	if err := gocsv.Marshal(&dtos, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

// ExportCSV writes the indicator table to path, creating parent directories.
func ExportCSV(path string, rows []model.IndicatorRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	dtos := toDTO(rows)
	if err := gocsv.MarshalFile(&dtos, file); err != nil {
		return fmt.Errorf("error marshalling file: %w", err)
	}
	return nil
}
