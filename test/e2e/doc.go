/*
Package e2e holds the live suites run against a deployed ingestion pipeline.

	test/e2e/
	├── doc.go                This file
	├── env_test.go           Shared wiring: config, storage, manifest reader, API client
	├── uploader_test.go      UploaderSuite: upload sample catalogs and read them back
	└── functional_test.go    FunctionalSuite: catalog/product invariants, input cleanup

The suites are guarded by the e2e build tag and read the configuration named
by E2E_CONFIG:

	E2E_CONFIG=resources/configuration.ini go test -tags e2e ./test/e2e -run TestUploader
	# wait for the pipeline to ingest the uploads
	E2E_CONFIG=resources/configuration.ini go test -tags e2e ./test/e2e -run TestFunctional

Nothing orders the two suites; the uploader is expected to run first and the
pipeline to converge before the functional suite starts.
*/
package e2e
