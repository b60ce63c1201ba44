// Package docpreview lays out business records into fixed-size pages and
// exports the rendered result as a single multi-page document.
//
// # Quick Start
//
// Create an exporter, export a document, and close when done:
//
//	exp, err := docpreview.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	art, err := exp.Export(ctx, docpreview.Document{
//	    Kind:    "purchase-order",
//	    Title:   "Purchase Order PO-1042",
//	    Columns: []string{"Part", "Description", "Qty"},
//	    Records: records,
//	    Policy:  docpreview.DefaultPolicy(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(art.Filename, art.Data, 0644)
//
// # Pipeline
//
// An export runs these stages in order:
//
//  1. Pagination: Plan splits the record list into pages under a CapacityPolicy.
//  2. Composition: DocumentComposer renders header, records and footer for every
//     page into one continuous surface, each page exactly one physical page tall.
//  3. Rendering: the surface is loaded in headless Chrome (go-rod) while a
//     HeightBudgetTracker follows the measured header and footer heights.
//  4. Asset readiness: AssetReadinessGate waits until every image has loaded or
//     failed. Capture cannot start without the gate's result.
//  5. Raster export: the surface is captured as one bitmap, sliced into
//     physical-page bands and assembled into a PDF.
//
// Print bypasses stage 5 and uses the browser's native print-to-PDF instead.
//
// # Sessions
//
// For interactive previews, keep a Preview open. It owns the height
// observation and guards against concurrent exports:
//
//	prev, err := exp.Open(ctx, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer prev.Close()
//
//	art, err := prev.Export(ctx)
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library downloads a managed
// Chromium on first run (~/.cache/rod/browser/). In containers set
// ROD_NO_SANDBOX=1, and use ROD_BROWSER_BIN to point at a custom binary.
package docpreview
