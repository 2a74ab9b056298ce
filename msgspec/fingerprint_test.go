package msgspec

import "testing"

// headerFiles and cameraInfoFiles hold the real std_msgs/sensor_msgs
// definitions these regression tests pin MD5s against.
var headerFiles = fakeReader{
	"/std_msgs/Header.msg": "uint32 seq\ntime stamp\nstring frame_id\n",
}

var cameraInfoFiles = fakeReader{
	"/std_msgs/Header.msg": "uint32 seq\ntime stamp\nstring frame_id\n",
	"/sensor_msgs/RegionOfInterest.msg": "uint32 x_offset\n" +
		"uint32 y_offset\n" +
		"uint32 height\n" +
		"uint32 width\n" +
		"bool do_rectify\n",
	"/sensor_msgs/CameraInfo.msg": "Header header\n" +
		"uint32 height\n" +
		"uint32 width\n" +
		"string distortion_model\n" +
		"float64[] D\n" +
		"float64[9] K\n" +
		"float64[9] R\n" +
		"float64[12] P\n" +
		"uint32 binning_x\n" +
		"uint32 binning_y\n" +
		"RegionOfInterest roi\n",
}

func TestFingerprintStdMsgsHeader(t *testing.T) {
	r := NewResolver([]SearchEntry{{Package: "std_msgs", Root: "/std_msgs"}}).WithReader(headerFiles)

	order, err := r.ResolveMessage("std_msgs", "Header")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := order[len(order)-1]

	sum, err := Fingerprint(header, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const want = "2176decaecbce78abc3b96ef049fabed"
	if sum != want {
		t.Errorf("Header MD5 = %s, want %s", sum, want)
	}
}

func TestFingerprintSensorMsgsCameraInfo(t *testing.T) {
	r := NewResolver([]SearchEntry{
		{Package: "std_msgs", Root: "/std_msgs"},
		{Package: "sensor_msgs", Root: "/sensor_msgs"},
	}).WithReader(cameraInfoFiles)

	order, err := r.ResolveMessage("sensor_msgs", "CameraInfo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	camInfo := order[len(order)-1]

	sum, err := Fingerprint(camInfo, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const want = "c9a58c1b0b154e0e6da7578cb991d214"
	if sum != want {
		t.Errorf("CameraInfo MD5 = %s, want %s", sum, want)
	}
}

func TestFingerprintRoundTripViaSourceText(t *testing.T) {
	r := NewResolver([]SearchEntry{{Package: "std_msgs", Root: "/std_msgs"}}).WithReader(headerFiles)

	order, err := r.ResolveMessage("std_msgs", "Header")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := order[len(order)-1]
	sum1, err := Fingerprint(header, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reparsed, err := ParseMessage(header.Package, header.Name, header.SourceText)
	if err != nil {
		t.Fatalf("unexpected error reparsing source_text: %v", err)
	}
	sum2, err := Fingerprint(reparsed, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum1 != sum2 {
		t.Errorf("fingerprint not stable across reparse: %s != %s", sum1, sum2)
	}
}

func TestCanonicalTextConstantsBeforeFields(t *testing.T) {
	spec, err := ParseMessage("p", "M", "int32 FOO=1\nint32 x\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := CanonicalText(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const want = "int32 FOO=1\nint32 x"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestCanonicalTextArraySuffix(t *testing.T) {
	spec, err := ParseMessage("p", "M", "int32[] dyn\nint32[4] fixed\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := CanonicalText(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const want = "int32[] dyn\nint32[4] fixed"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestCanonicalTextMissingDependencyFingerprint(t *testing.T) {
	spec, err := ParseMessage("p", "M", "other_pkg/Thing thing\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := CanonicalText(spec, nil); err == nil {
		t.Fatal("expected error for missing dependency fingerprint")
	}
}
