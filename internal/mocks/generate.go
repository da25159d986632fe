package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/ladder --output domain/ladder --outpkg laddermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/venue --output domain/venue --outpkg venuemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Dispatcher --dir ../domain/payment --output domain/payment --outpkg paymentmock --filename dispatcher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Outbox --dir ../domain/payment --output domain/payment --outpkg paymentmock --filename outbox_mock.go
