// Package importers fans one parsed GEDCOM record set out into three
// structurally different stores.
//
// # Architecture
//
//	raw text → sanitize → parse → relational import → document + graph import → cross-check
//
// The relational store is the identifier source of truth: it is written
// first, and as each entity is persisted its xref → ID mapping enters the
// run-scoped resolver. The document and graph importers only ever read that
// mapping.
//
// The three stores fail differently, on purpose:
//
//   - relational: transactional — one all-or-nothing transaction per run
//     that aborts on the first failed write (standard strategy), or one per
//     batch with failed records skipped (optimized strategy);
//   - document: each insert stands alone, failures skip;
//   - graph: one transaction per run, all or nothing.
//
// The cross-check step after fan-out reconciles those semantics: missing
// documents are retried once, remaining drift is reported in the outcome.
//
// # Strategies
//
// Both strategies share one orchestrator and differ only in batching and
// transaction granularity, selected per run:
//
//	pipeline := importers.NewPipeline(db, docs, graph, nil, log, importers.Options{})
//	outcome, err := pipeline.Run(ctx, raw, treeID, importers.StrategyOptimized)
package importers
