package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/remote --output domain/remote --outpkg remotemock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Subscription --dir ../domain/remote --output domain/remote --outpkg remotemock --filename subscription_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Backend --dir ../platform/localcache --output platform/localcache --outpkg localcachemock --filename backend_mock.go
