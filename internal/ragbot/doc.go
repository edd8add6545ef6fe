// Package ragbot indexes documents into a vector store and answers
// questions from them with retrieval-augmented generation.
//
// Add loads a file by data type, splits it into chunks and stores each
// chunk under an ID derived from the content hash, so adding the same
// content twice stores it once. Query retrieves the closest chunks, formats
// them into a prompt and hands the prompt to a Generator.
package ragbot
