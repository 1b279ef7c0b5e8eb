// Package outreach turns company profiles into outreach drafts.
//
// The Pipeline type drives every generation path:
//   - GenerateEmail retrieves the closest template email and asks the
//     generator to adapt it to the target company
//   - GenerateLinkedInMessage writes a short connection message
//   - GenerateVariants writes one draft per VariantMode concurrently
//   - MergeVariants and Revise post-process existing drafts
//
// Grading, commonality detection and context grouping are pure functions
// and need no Pipeline.
package outreach
