// Package sim provides the area-of-interest publish/subscribe dispatch engine.
//
// # Reading Guide
//
// Start with these files to understand the dispatch kernel:
//   - region.go: Region tagged union (Circle, Polygon) and its validation
//   - overlap.go: separating-axis overlap test between two regions
//   - registry.go: append-only subscription registry
//   - dispatch.go: Engine.Publish, recipient selection and traffic accounting
//
// # Architecture
//
// The sim package defines the core types and interfaces; collaborators live
// in sub-packages:
//   - sim/voronoi/: Voronoi tessellation implementing Partition
//   - sim/grid/: uniform grid implementing Partition
//   - sim/wire/: protobuf packet layouts implementing WireSizeOracle
//   - sim/payload/: block-break payload generation
//   - sim/trace/: publication records and aggregate statistics
//   - sim/experiment/: grid sweeps, campaigns and result artifacts
//   - sim/figure/: SVG rendering of a classified publication
//
// # Key Interfaces
//
//   - Partition: site, cell, neighbour and point-location queries over a
//     frozen tessellation
//   - WireSizeOracle: outbound and inbound packet sizes
//
// Partition and Registry are built once per run and are read-only while
// publications are evaluated, so Publish may be called from many goroutines.
package sim
