// Package dispatch hands conversion jobs off to a background executor,
// either an AWS Lambda function or an in-process goroutine.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/olusola-dev/askbase/internal/core"
)

const invokeTimeout = 30 * time.Second

type LambdaDispatcher struct {
	client *lambda.Client
}

var _ core.JobDispatcher = (*LambdaDispatcher)(nil)

func NewLambdaDispatcher(awsCfg aws.Config) *LambdaDispatcher {
	return &LambdaDispatcher{client: lambda.NewFromConfig(awsCfg)}
}

// InvokeAsync fires an Event-type invocation and returns without waiting
// for the function to run.
func (d *LambdaDispatcher) InvokeAsync(ctx context.Context, functionName string, payload []byte) error {
	ctxInv, cancel := context.WithTimeout(ctx, invokeTimeout)
	defer cancel()

	_, err := d.client.Invoke(ctxInv, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("lambda invoke %s: %w", functionName, err)
	}
	return nil
}
