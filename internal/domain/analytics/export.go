package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// Report types the exporter knows how to project.
const (
	ReportSales         = "sales"
	ReportProfessionals = "professionals"
	ReportProducts      = "products"
	ReportFinancial     = "financial"
	ReportPipeline      = "pipeline"
	ReportClients       = "clients"
)

// ExportCSV renders one report type as CSV rows selected from the snapshot.
// It is a pure projection: every number comes straight from the snapshot,
// nothing is recomputed.
func ExportCSV(s *Snapshot, report string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	var err error
	switch report {
	case ReportSales:
		err = writeSales(w, s)
	case ReportProfessionals:
		err = writeProfessionals(w, s)
	case ReportProducts:
		err = writeProducts(w, s)
	case ReportFinancial:
		err = writeFinancial(w, s)
	case ReportPipeline:
		err = writePipeline(w, s)
	case ReportClients:
		err = writeClients(w, s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, report)
	}
	if err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSales(w *csv.Writer, s *Snapshot) error {
	if err := w.Write([]string{"day", "total", "completed", "revenue"}); err != nil {
		return err
	}
	for _, b := range s.DailySeries {
		if err := w.Write([]string{b.Day, itoa(b.Total), itoa(b.Completed), b.Revenue.StringFixed(2)}); err != nil {
			return err
		}
	}
	return nil
}

func writeProfessionals(w *csv.Writer, s *Snapshot) error {
	if err := w.Write([]string{"name", "total", "completed", "conversion", "procedures_sold", "packages_sold", "revenue"}); err != nil {
		return err
	}
	for _, p := range s.Professionals {
		row := []string{p.Name, itoa(p.Total), itoa(p.Completed), itoa(p.Conversion),
			itoa(p.ProceduresSold), itoa(p.PackagesSold), p.Revenue.StringFixed(2)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeProducts(w *csv.Writer, s *Snapshot) error {
	if err := w.Write([]string{"type", "name", "total", "completed", "conversion", "revenue"}); err != nil {
		return err
	}
	for _, e := range s.TopProcedures {
		if err := w.Write([]string{"procedure", e.Name, itoa(e.Total), itoa(e.Completed), itoa(e.Conversion), e.Revenue.StringFixed(2)}); err != nil {
			return err
		}
	}
	for _, e := range s.TopPackages {
		if err := w.Write([]string{"package", e.Name, itoa(e.Total), itoa(e.Completed), itoa(e.Conversion), e.Revenue.StringFixed(2)}); err != nil {
			return err
		}
	}
	return nil
}

func writeFinancial(w *csv.Writer, s *Snapshot) error {
	if err := w.Write([]string{"start", "end", "revenue", "average_ticket", "conversion", "total", "completed", "new_clients"}); err != nil {
		return err
	}
	m := s.Metrics
	return w.Write([]string{s.Period.StartISO, s.Period.EndISO, m.Revenue.StringFixed(2),
		m.AverageTicket.StringFixed(2), itoa(m.Conversion), itoa(m.Total), itoa(m.Completed), itoa(m.NewClients)})
}

func writePipeline(w *csv.Writer, s *Snapshot) error {
	if err := w.Write([]string{"status", "total"}); err != nil {
		return err
	}
	for _, sc := range s.StatusDistribution {
		if err := w.Write([]string{sc.Status, itoa(sc.Total)}); err != nil {
			return err
		}
	}
	return nil
}

func writeClients(w *csv.Writer, s *Snapshot) error {
	if err := w.Write([]string{"name", "agendamentos_total", "agendamentos_completed", "revenue"}); err != nil {
		return err
	}
	for _, c := range s.ClientAnalysis {
		if err := w.Write([]string{c.Name, itoa(c.Total), itoa(c.Completed), c.Revenue.StringFixed(2)}); err != nil {
			return err
		}
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
