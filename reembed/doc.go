// Package reembed builds the template store from a corpus of template emails.
//
// The corpus is embedded in batches with retry and exponential backoff,
// progress is reported as batches complete, and the result is a
// core.TemplateStore tagged with the embedding model and dimension so a
// mismatched query model is caught at retrieval time. Rebuilding the store
// after switching embedding models is the same operation.
package reembed
