// Package resume implements the resume optimization crew: a content
// specialist, a layout specialist, a template registry, and a page-fit
// optimizer, composed into a fixed pipeline and exposed as driven-mode tools.
//
// Payloads move between stages as artifact references:
//
//	@input      the crew input (resume, job_description, page_preference)
//	@optimized  {resume, analysis, suggestions} from the content specialist
//	@template   the selected Template
//	@layout     {layout_config, resume} from the layout specialist
//	@paginated  the page-fitted resume and layout
package resume
