// Command thermatiff converts directories of radiometric thermal JPEGs
// into calibrated single-band TIFF rasters.
package main
