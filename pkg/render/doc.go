// Package render provides visualization rendering for ownership structures.
//
// # Overview
//
// This package contains the rendering pipeline that transforms ownership
// trees into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Ownership diagrams (in [diagram] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := diagram.RenderSVG(desc.DOT())
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Ownership Diagrams
//
// The [diagram] subpackage encodes an ownership tree into a textual diagram
// description (nodes, edges, style classes) and renders it through Graphviz.
//
//	desc, err := diagram.Encode(resp.RootCompany)
//	svg, err := diagram.RenderSVG(desc.DOT())
//
// [diagram]: github.com/jsterling/ownerchart/pkg/render/diagram
package render
