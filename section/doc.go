// Package section defines the fixed-size binary layout of a C3D file's
// Header block, including its 164-byte event sub-block.
//
// # Header Format (512 bytes)
//
//	Bytes    | Field               | Type   | Description
//	---------|---------------------|--------|----------------------------------
//	0        | ParameterBlock      | uint8  | 1-based block index of the parameter section
//	1        | magic               | uint8  | must equal 80
//	2-3      | PointCount          | uint16 |
//	4-5      | AnalogCount         | uint16 | per-frame analog sample count, including subframes
//	6-7      | FirstFrame          | uint16 |
//	8-9      | LastFrame           | uint16 |
//	10-11    | MaxGap              | uint16 |
//	12-15    | ScaleFactor         | float  | negative means point data is float-encoded
//	16-17    | DataBlock           | uint16 | 1-based
//	18-19    | AnalogPerFrame      | uint16 |
//	20-23    | FrameRate           | float  |
//	24-297   | reserved            | 274B   |
//	298-299  | long_event_labels   | uint16 | equals 0x3039 when event labels are 4 characters
//	300-301  | EventCount          | uint16 |
//	302-303  | reserved            | uint16 |
//	304-467  | event block         | 164B   | see below
//	468-511  | reserved            | 44B    |
//
// # Event sub-block (164 bytes, starting at header offset 304)
//
//	Bytes (relative) | Field    | Description
//	------------------|----------|---------------------------------
//	0-71              | timings  | up to 18 event timings, uint32 each
//	72-89             | flags    | 18 display flags, one byte each
//	90-91             | pad      | unused
//	92-163            | labels   | up to 18 four-byte event labels
//
// Integer fields are little-endian for the Intel and DEC processor formats
// and big-endian for MIPS; ScaleFactor and FrameRate require processor-aware
// float decoding handled by the dtype and floatcodec packages, not by this
// package — Header stores their raw bits until ProcessorConvert interprets
// them.
package section
