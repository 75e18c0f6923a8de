package config

const (
	defaultLogDir              = "~/.local/share/thermatiff/logs"
	defaultToolsDir            = "~/.local/share/thermatiff/tools"
	defaultDecoderBinary       = "thermal-decoder"
	defaultExifToolVersion     = "13.36"
	defaultExifToolDownloadURL = "https://exiftool.org/Image-ExifTool-{version}.tar.gz"
	defaultDownloadTimeout     = 300
	defaultCamera              = "dji"
	defaultFormat              = "celsius"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			ToolsDir: defaultToolsDir,
		},
		Tools: Tools{
			DecoderBinary:       defaultDecoderBinary,
			ExifToolVersion:     defaultExifToolVersion,
			ExifToolDownloadURL: defaultExifToolDownloadURL,
			DownloadTimeout:     defaultDownloadTimeout,
		},
		Conversion: Conversion{
			Camera:   defaultCamera,
			Format:   defaultFormat,
			CopyEXIF: true,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
