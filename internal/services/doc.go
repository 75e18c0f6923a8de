// Package services hosts the wrappers around external tools the converter
// shells out to, plus the shared error markers used to classify their
// failures. Subpackages wrap one binary each: decoder (radiometric payload
// extraction) and exiftool (metadata transplantation).
package services
