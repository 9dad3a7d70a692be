package detector

// Detect exposes the pure detection rule for tests.
var Detect = detect
