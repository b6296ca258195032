// Package schema holds the declarative field table that drives both the HTML
// form and the feature vector handed to the price model. A Schema pairs an
// ordered column list with one descriptor per column; the column order is the
// contract with the model artifact and never changes after load.
//
// Documents are JSON or YAML:
//
//	id: vehicle
//	columns: [Brand, Year, CarAge]
//	fields:
//	  Brand: {label: Car Brand, type: select, options: [Toyota, Honda]}
//	  Year:  {type: number, min: 1990, max: 2026}
//	  CarAge:
//	    type: number
//	    readonly: true
//	    derive: {kind: age, from: Year}
//
// Help text may carry a small set of inline HTML elements; everything else is
// stripped at load time.
package schema
